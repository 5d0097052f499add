package knowledge

import "github.com/observastack/intel-engine/internal/models"

func builtinSignatures() []models.Signature {
	return []models.Signature{
		{
			Name:     "memory_pressure_gc",
			Symptoms: []string{"high_cpu", "high_memory", "gc_pressure"},
			Triggers: []models.Trigger{
				trigger("cpu", ">80"),
				trigger("memory", ">80"),
				trigger("gc_time", ">100ms"),
			},
			RootCause: "Memory pressure causing excessive garbage collection",
			Solutions: []string{
				"Increase heap size (-Xmx)",
				"Optimize object allocation patterns",
				"Review memory leaks",
				"Consider G1GC for better latency",
			},
			Prevention: []string{
				"Set heap headroom alerts before saturation",
				"Load-test allocation-heavy code paths",
			},
			Confidence: 0.95,
		},
		{
			Name:     "database_bottleneck",
			Symptoms: []string{"slow_queries", "connection_pool_full", "high_latency"},
			Triggers: []models.Trigger{
				trigger("db_latency", ">1000ms"),
				trigger("connections", ">90%"),
				trigger("timeout", ">10"),
			},
			RootCause: "Database performance degradation",
			Solutions: []string{
				"Optimize slow queries",
				"Add database indexes",
				"Scale connection pool",
				"Consider read replicas",
			},
			Prevention: []string{
				"Monitor connection pool utilization",
				"Review query plans before deploying schema changes",
			},
			Confidence: 0.90,
		},
		{
			Name:     "cascade_failure",
			Symptoms: []string{"error_spike", "latency_increase", "resource_exhaustion"},
			Triggers: []models.Trigger{
				trigger("error_rate", ">5%"),
				trigger("latency", ">2000ms"),
				trigger("timeouts", ">10"),
			},
			RootCause: "Upstream service failure causing downstream impact",
			Solutions: []string{
				"Implement circuit breaker",
				"Add timeout/retry logic",
				"Scale failing service",
				"Enable graceful degradation",
			},
			Prevention: []string{
				"Add circuit breakers to external calls",
				"Exercise failure modes in game days",
			},
			Confidence: 0.85,
		},
		{
			Name:     "resource_leak",
			Symptoms: []string{"memory_climb", "connection_growth", "handle_increase"},
			Triggers: []models.Trigger{
				trigger("memory", ">85"),
				trigger("gc_pressure", "increasing"),
			},
			RootCause: "Resource leak in application code",
			Solutions: []string{
				"Analyze heap dumps",
				"Check connection cleanup",
				"Review file handle usage",
				"Add resource monitoring",
			},
			Prevention: []string{
				"Add resource-leak detection tests",
				"Track file handle and connection counts",
			},
			Confidence: 0.80,
		},
	}
}

func builtinPlaybooks() map[string]Playbook {
	return map[string]Playbook{
		"OutOfMemoryError": {
			ImmediateActions: []string{
				"Restart affected service",
				"Check heap dump if available",
				"Scale memory temporarily",
			},
			Investigation: []string{
				"Analyze memory usage patterns",
				"Review recent code changes",
				"Check for memory leaks",
			},
			Prevention: []string{
				"Set proper heap limits",
				"Add memory monitoring",
				"Implement memory alerts",
			},
		},
		"ConnectionTimeout": {
			ImmediateActions: []string{
				"Check network connectivity",
				"Verify service health",
				"Scale connection pool",
			},
			Investigation: []string{
				"Analyze connection patterns",
				"Check service load",
				"Review timeout settings",
			},
			Prevention: []string{
				"Implement connection pooling",
				"Add circuit breakers",
				"Set appropriate timeouts",
			},
		},
		"DatabaseLockTimeout": {
			ImmediateActions: []string{
				"Check for long-running transactions",
				"Identify blocking queries",
				"Consider query cancellation",
			},
			Investigation: []string{
				"Analyze query execution plans",
				"Review transaction scope",
				"Check index usage",
			},
			Prevention: []string{
				"Optimize query performance",
				"Minimize transaction scope",
				"Add query timeouts",
			},
		},
	}
}

func builtinThresholds() map[string]ThresholdBands {
	return map[string]ThresholdBands{
		"cpu": {
			"normal":    "<60%",
			"warning":   "60-80%",
			"critical":  ">80%",
			"emergency": ">95%",
		},
		"memory": {
			"normal":    "<70%",
			"warning":   "70-85%",
			"critical":  ">85%",
			"emergency": ">95%",
		},
		"latency": {
			"excellent":  "<100ms",
			"good":       "100-500ms",
			"acceptable": "500ms-2s",
			"poor":       ">2s",
		},
		"error_rate": {
			"excellent": "<0.1%",
			"good":      "0.1-1%",
			"warning":   "1-5%",
			"critical":  ">5%",
		},
	}
}

func builtinSolutions() map[string][]string {
	return map[string][]string{
		"high_cpu": {
			"Profile CPU usage to identify hotspots",
			"Check for inefficient algorithms",
			"Review thread pool configurations",
			"Consider horizontal scaling",
			"Optimize database queries",
			"Check for busy-wait loops",
		},
		"high_memory": {
			"Analyze heap dumps for memory leaks",
			"Review object lifecycle management",
			"Optimize caching strategies",
			"Consider memory-efficient data structures",
			"Scale memory or optimize allocation",
			"Check for unnecessary object retention",
		},
		"high_latency": {
			"Identify slow components in request path",
			"Optimize database queries and indexes",
			"Review network latency and bandwidth",
			"Implement caching strategies",
			"Consider async processing",
			"Check for resource contention",
		},
		"high_error_rate": {
			"Analyze error logs for patterns",
			"Check service dependencies",
			"Review recent deployments",
			"Implement circuit breakers",
			"Add retry logic with backoff",
			"Monitor upstream service health",
		},
	}
}

func builtinDomainKnowledge() DomainKnowledge {
	return DomainKnowledge{
		ArchitecturePatterns: map[string]ArchitectureProfile{
			"microservices": {
				CommonIssues: []string{
					"Service discovery failures",
					"Network partitions",
					"Cascade failures",
					"Circuit breaker activation",
				},
				MonitoringFocus: []string{
					"Service-to-service latency",
					"Request success rates",
					"Service dependency health",
					"Resource utilization per service",
				},
			},
			"monolith": {
				CommonIssues: []string{
					"Memory leaks",
					"Database connection exhaustion",
					"Thread pool saturation",
					"Single points of failure",
				},
				MonitoringFocus: []string{
					"Overall application health",
					"Database performance",
					"JVM metrics",
					"Application server metrics",
				},
			},
		},
		TechnologyPatterns: map[string]TechnologyProfile{
			"kubernetes": {
				CommonIssues: []string{
					"Pod restarts and crashes",
					"Resource limits exceeded",
					"Node resource exhaustion",
					"Network policy issues",
				},
				Solutions: []string{
					"Adjust resource requests/limits",
					"Implement horizontal pod autoscaling",
					"Monitor node health",
					"Review network policies",
				},
			},
			"docker": {
				CommonIssues: []string{
					"Container memory limits",
					"Image size optimization",
					"Volume mount issues",
					"Network connectivity",
				},
				Solutions: []string{
					"Optimize container resource usage",
					"Use multi-stage builds",
					"Monitor container metrics",
					"Implement health checks",
				},
			},
		},
		DatabasePatterns: map[string]TechnologyProfile{
			"postgresql": {
				CommonIssues: []string{
					"Connection pool exhaustion",
					"Lock contention",
					"Slow query performance",
					"Vacuum/analyze issues",
				},
				Solutions: []string{
					"Tune connection pool settings",
					"Optimize query performance",
					"Monitor lock waits",
					"Configure auto-vacuum properly",
				},
			},
			"mysql": {
				CommonIssues: []string{
					"InnoDB buffer pool sizing",
					"Query cache effectiveness",
					"Replication lag",
					"Table lock contention",
				},
				Solutions: []string{
					"Optimize buffer pool size",
					"Review query cache configuration",
					"Monitor replication health",
					"Use appropriate storage engines",
				},
			},
		},
	}
}

func trigger(name, condition string) models.Trigger {
	return models.Trigger{Name: name, Condition: models.ParseCondition(condition)}
}

package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANALYSIS_REQUESTS = "analysis-requests" // dockets queued for analysis
	KAFKA_TOPIC_ANALYSIS_RESULTS  = "analysis-results"  // completed analysis artifacts
)

const (
	MAX_RETRIES = 5
	RETRY_DELAY = 2 * time.Second
)

package hermes

const (
	StreamName   = "RANKER_EVENTS"
	StreamMaxAge = "720h" // 30 days

	SubjectConfigAll      = "ranking.config.>"
	SubjectConfigReverted = "ranking.config.reverted"
)

func SubjectConfigCreated(configID string) string { return "ranking.config." + configID + ".created" }
func SubjectConfigApplied(configID string) string { return "ranking.config." + configID + ".applied" }
func SubjectConfigDeleted(configID string) string { return "ranking.config." + configID + ".deleted" }

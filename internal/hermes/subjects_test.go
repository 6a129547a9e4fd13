package hermes

import (
	"strings"
	"testing"
)

func TestConfigSubjectsMatchStream(t *testing.T) {
	prefix := strings.TrimSuffix(SubjectConfigAll, ">")
	subjects := []string{
		SubjectConfigCreated("abc"),
		SubjectConfigApplied("abc"),
		SubjectConfigDeleted("abc"),
		SubjectConfigReverted,
	}
	for _, s := range subjects {
		if !strings.HasPrefix(s, prefix) {
			t.Errorf("subject %q not covered by stream subject %q", s, SubjectConfigAll)
		}
	}
	if got := SubjectConfigApplied("42"); got != "ranking.config.42.applied" {
		t.Errorf("unexpected subject %q", got)
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureJSON(t *testing.T) {
	defer Configure("info", "text")

	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	defer Logger.SetOutput(logrus.StandardLogger().Out)

	Configure("debug", "json")
	if !Logger.IsLevelEnabled(logrus.DebugLevel) {
		t.Fatal("expected debug level")
	}

	WithField("form_id", "f1").Infof("committed %d", 1)
	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if line["form_id"] != "f1" || line["msg"] != "committed 1" {
		t.Fatalf("unexpected entry %v", line)
	}
}

func TestConfigureUnknownLevel(t *testing.T) {
	defer Configure("info", "text")
	Configure("chatty", "")
	if Logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", Logger.GetLevel())
	}
}

package usage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
)

var telemetry = true
var source = "unknown"
var runId = uuid.NewString()

type UsageRecord struct {
	UserId    interface{} `json:"userid"`
	RunId     string      `json:"run_id"`
	EventName string      `json:"event_name"`
	Action    string      `json:"action"`
	Source    string      `json:"source"`
}

func SendUsageRecord(repoOwner string, eventName string, action string) error {
	payload := UsageRecord{
		UserId:    hashOwner(repoOwner),
		RunId:     runId,
		EventName: eventName,
		Action:    action,
		Source:    source,
	}
	return sendPayload(payload)
}

func SendLogRecord(repoOwner string, message string) error {
	payload := UsageRecord{
		UserId:    hashOwner(repoOwner),
		RunId:     runId,
		EventName: "log from " + source,
		Action:    message,
		Source:    source,
	}
	return sendPayload(payload)
}

func hashOwner(repoOwner string) string {
	h := sha256.New()
	h.Write([]byte(repoOwner))
	return hex.EncodeToString(h.Sum(nil))
}

func sendPayload(payload interface{}) error {
	if !telemetry {
		return nil
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Error marshalling usage record", "error", err)
		return err
	}
	req, err := http.NewRequest("POST", "https://analytics.slipway.sh", bytes.NewBuffer(jsonData))
	if err != nil {
		slog.Error("Error creating request", "error", err)
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Warn("Error received while sending telemetry. You can disable this message by setting TELEMETRY=false", "error", err)
		return err
	}
	defer resp.Body.Close()
	return nil
}

func init() {
	if os.Getenv("GITHUB_ACTIONS") != "" {
		source = "github"
	}
	if os.Getenv("TELEMETRY") == "false" {
		telemetry = false
	}
}

// ReportErrorAndExit logs the outcome of a run, ships it as a log record and
// terminates the process with the given exit code. Exit code 0 is the
// regular way out of a run, including the nothing-to-do cases.
func ReportErrorAndExit(repoOwner string, message string, exitCode int) {
	if exitCode == 0 {
		slog.Info(message)
	} else {
		slog.Error(message)
	}
	err := SendLogRecord(repoOwner, message)
	if err != nil {
		slog.Error("Failed to send log record.", "error", err)
	}
	os.Exit(exitCode)
}

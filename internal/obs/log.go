package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

const serviceName = "rci-api"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide logger. No prefix, no flags: every line
// written through it is a self-contained JSON object on stdout.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest writes one JSON object describing a completed request. The
// service tag keeps the lines filterable when several services share a log
// stream.
func LogRequest(entry map[string]any) {
	if _, ok := entry["service"]; !ok {
		entry["service"] = serviceName
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log_marshal_failed","service":"` + serviceName + `"}`)
		return
	}
	Logger().Println(string(data))
}

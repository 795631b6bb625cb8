package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	intentStart   = "start"
	intentStop    = "stop"
	intentLog     = "log"
	intentUnknown = "unknown"

	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// messagesTotal counts inbound messages by classified intent and outcome.
var messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "worklog",
	Name:      "messages_total",
	Help:      "Inbound messages by classified intent and outcome.",
}, []string{"intent", "outcome"})

package metric

import (
	"errors"
	"log/slog"
	"strconv"

	"showdownbot/src-server/bot"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer counts dispatch outcomes reported by the bot.
type Observer struct {
	interactions  *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
	replyFailures prometheus.Counter
	httpActions   *prometheus.CounterVec
}

var _ bot.Observer = (*Observer)(nil)

func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "showdown_interactions_total",
			Help: "Interactions received, by kind and whether a handler matched",
		}, []string{"kind", "handled"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "showdown_handler_errors_total",
			Help: "Interaction handlers that returned an error or panicked",
		}, []string{"kind"}),
		replyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "showdown_reply_failures_total",
			Help: "Reply writes Discord rejected",
		}),
		httpActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "showdown_http_actions_total",
			Help: "HTTP action requests, by whether they succeeded",
		}, []string{"ok"}),
	}
	o.interactions = register(reg, o.interactions)
	o.handlerErrors = register(reg, o.handlerErrors)
	o.replyFailures = register(reg, o.replyFailures)
	o.httpActions = register(reg, o.httpActions)
	return o
}

// register returns the collector already registered under the same name, if
// any, so a second NewObserver shares the counters.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		slog.Error("can't register metric", "error", err)
	}
	return c
}

func (o *Observer) InteractionDispatched(kind string, handled bool) {
	o.interactions.WithLabelValues(kind, strconv.FormatBool(handled)).Inc()
}

func (o *Observer) HandlerFailed(kind string) {
	o.handlerErrors.WithLabelValues(kind).Inc()
}

func (o *Observer) ReplyFailed() {
	o.replyFailures.Inc()
}

func (o *Observer) HttpActionDispatched(action string, ok bool) {
	o.httpActions.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

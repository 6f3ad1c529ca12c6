package consumerWorker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"eventverteiler/internal/dto"
	"eventverteiler/internal/mailer"
	"eventverteiler/internal/rabbit"
	"eventverteiler/internal/verifier"
)

// Reader consumes delayed verification messages scheduled at publish time
// and re-checks the published state through the verifier.
type Reader struct {
	RMQ      *rabbit.Client
	verifier *verifier.Verifier
	alerts   *mailer.Alerts
	done     chan struct{}
	cancel   context.CancelFunc
}

func NewReader(rmq *rabbit.Client, v *verifier.Verifier, alerts *mailer.Alerts) *Reader {
	return &Reader{
		RMQ:      rmq,
		verifier: v,
		alerts:   alerts,
		done:     make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("Verification reader started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.VerificationDueMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("Failed to unmarshal verification message: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Str("event_id", msg.EventID).
				Int("logs", len(msg.LogIDs)).
				Msg("Received verification message")

			report, err := r.verifier.VerifyLogs(cctx, msg.LogIDs)
			if err != nil {
				zlog.Logger.Error().
					Err(err).
					Str("event_id", msg.EventID).
					Msg("Scheduled verification failed")
				return err
			}

			zlog.Logger.Info().
				Str("event_id", msg.EventID).
				Int("total", report.Summary.Total).
				Int("verified", report.Summary.Verified).
				Int("failed", report.Summary.Failed).
				Msg("Scheduled verification finished")

			var failures []string
			for _, res := range report.Results {
				if res.Success && !res.Verified {
					failures = append(failures, fmt.Sprintf("%s/%s: %s", res.Platform, res.Method, res.Error))
				}
			}
			if len(failures) > 0 {
				if err := r.alerts.SendVerificationAlert(msg.EventID, failures); err != nil {
					zlog.Logger.Warn().Err(err).Msg("Failed to send verification alert")
				}
			}
			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("Verification reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/app"
	"github.com/shrimpsizemoose/lussekatt/internal/models"
	"github.com/shrimpsizemoose/lussekatt/internal/store"
)

// Worker consumes submission events off the Redis stream and runs the
// downstream pipeline for each: fetch the submitted URL, archive the
// bytes, email the submitter, append an audit record.
type Worker struct {
	store    store.Store
	redis    *redis.Client
	blobs    BlobStore
	email    EmailSender
	stream   string
	group    string
	consumer string

	httpClient *http.Client

	tg       *tgbotapi.BotAPI
	tgChatID int64
}

func New(config *app.Config, s store.Store) (*Worker, error) {
	opt, err := redis.ParseURL(config.Events.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var email EmailSender = ConsoleSender{}
	if config.Notifier.EmailBackend == "sendgrid" {
		email = NewSendgridSender(
			config.Notifier.SendgridKey,
			config.Notifier.FromName,
			config.Notifier.FromEmail,
		)
	}

	w := &Worker{
		store:      s,
		redis:      client,
		blobs:      NewFSBlobStore(config.Notifier.StorageDir),
		email:      email,
		stream:     config.Events.Stream,
		group:      config.Events.Group,
		consumer:   config.Events.Consumer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if w.consumer == "" {
		w.consumer = "notifier-1"
	}

	if config.Notifier.TelegramToken != "" {
		tg, err := tgbotapi.NewBotAPI(config.Notifier.TelegramToken)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create telegram API: %w", err)
		}
		w.tg = tg
		w.tgChatID = config.Notifier.TelegramChatID
	}

	return w, nil
}

func (w *Worker) Close() error {
	if w.redis != nil {
		return w.redis.Close()
	}
	return nil
}

// Run blocks consuming events until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, w.stream, w.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info.Printf("Consuming stream %s as %s/%s", w.stream, w.group, w.consumer)

	for {
		streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.group,
			Consumer: w.consumer,
			Streams:  []string{w.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error.Printf("Failed to read stream: %v", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.handleMessage(ctx, msg)
			}
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg redis.XMessage) {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		logger.Error.Printf("Message %s has no payload, acking anyway", msg.ID)
		w.ack(ctx, msg.ID)
		return
	}

	var event models.SubmissionEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Error.Printf("Failed to decode event %s: %v", msg.ID, err)
		w.ack(ctx, msg.ID)
		return
	}

	if err := w.Process(ctx, event); err != nil {
		logger.Error.Printf("Failed to process event %s: %v", msg.ID, err)
	}
	w.ack(ctx, msg.ID)
}

func (w *Worker) ack(ctx context.Context, id string) {
	if err := w.redis.XAck(ctx, w.stream, w.group, id).Err(); err != nil {
		logger.Error.Printf("Failed to ack message %s: %v", id, err)
	}
}

// Process runs the pipeline for one event. A failed step still emails
// the submitter and leaves a Failed audit record.
func (w *Worker) Process(ctx context.Context, event models.SubmissionEvent) error {
	now := time.Now().UTC()

	path, err := w.fetchAndStore(ctx, event, now)
	if err != nil {
		w.notify(event.User.Email,
			"Processing Error",
			fmt.Sprintf("There was an error processing your submission: %v", err),
		)
		w.audit(event.User.Email, now, models.AuditStatusFailed, "")
		w.pingAdmin(fmt.Sprintf("Submission processing failed for %s: %v", event.User.Email, err))
		return err
	}

	w.notify(event.User.Email,
		"Download Complete",
		fmt.Sprintf("Your submission has been downloaded and stored.\n\nFile path: %s", path),
	)
	w.audit(event.User.Email, now, models.AuditStatusSuccess, path)
	return nil
}

func (w *Worker) fetchAndStore(ctx context.Context, event models.SubmissionEvent, now time.Time) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, event.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", event.URL, err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", event.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch %s: status %s", event.URL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", event.URL, err)
	}

	key := fmt.Sprintf("%s/%d-submission.zip", event.User.Email, now.Unix())
	path, err := w.blobs.Put(key, data)
	if err != nil {
		return "", fmt.Errorf("failed to store submission: %w", err)
	}

	return path, nil
}

func (w *Worker) notify(to, subject, body string) {
	if err := w.email.Send(to, subject, body); err != nil {
		logger.Error.Printf("Failed to email %s: %v", to, err)
	}
}

func (w *Worker) audit(email string, submissionTime time.Time, status, path string) {
	rec := &models.AuditRecord{
		ID:             uuid.NewString(),
		UserEmail:      email,
		SubmissionTime: submissionTime,
		Status:         status,
		ObjectPath:     path,
	}
	if err := w.store.CreateAuditRecord(rec); err != nil {
		logger.Error.Printf("Failed to write audit record for %s: %v", email, err)
	}
}

func (w *Worker) pingAdmin(text string) {
	if w.tg == nil {
		return
	}
	if _, err := w.tg.Send(tgbotapi.NewMessage(w.tgChatID, text)); err != nil {
		logger.Error.Printf("Failed to ping admin chat: %v", err)
	}
}

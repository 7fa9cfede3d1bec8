package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"game-rental-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers notifying subscribers that a game
// has become available again.
type WorkerPool struct {
	size    int
	jobs    chan int64
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case gameID := <-wp.jobs:
			wp.notifyGameAvailable(ctx, gameID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an availability notification for the given game.
func (wp *WorkerPool) Dispatch(gameID int64) {
	wp.jobs <- gameID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// notifyGameAvailable fetches subscriptions for the game and pushes to each.
func (wp *WorkerPool) notifyGameAvailable(ctx context.Context, gameID int64) {
	subscriptions, err := wp.store.ListSubscriptionsForGame(ctx, gameID)
	if err != nil {
		log.Printf("Error fetching subscriptions for game %d: %v", gameID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	gameLabel := fmt.Sprintf("#%d", gameID)
	if game, err := wp.store.GetGame(ctx, gameID); err != nil {
		log.Printf("Error fetching game %d: %v", gameID, err)
	} else if game != nil && game.Name != "" {
		gameLabel = game.Name
	}

	log.Printf("Sending %d notifications for game %d", len(subscriptions), gameID)
	message := fmt.Sprintf("Game %s is available for rent again!", gameLabel)
	for _, sub := range subscriptions {
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}

		resp, err := wp.sender.Send([]byte(message), wpSub, wp.webpush)
		if err != nil {
			log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
			continue
		}
		resp.Body.Close()

		// Expired subscriptions are dropped.
		if resp.StatusCode == http.StatusGone {
			log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
			if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
				log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
			}
		}
	}
}

package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/repository"
	"github.com/guudweb/judicial-backend/internal/service/email"
)

const sendTimeout = 30 * time.Second

// Dispatcher sends notification emails from a bounded queue on a fixed set
// of worker goroutines. A full queue drops the email; the stored
// notification is unaffected.
type Dispatcher struct {
	userRepo repository.UserRepository
	mailer   email.Service
	workers  int

	queue  chan *domain.Notification
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(userRepo repository.UserRepository, mailer email.Service, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		userRepo: userRepo,
		mailer:   mailer,
		workers:  workers,
		queue:    make(chan *domain.Notification, queueSize),
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

func (d *Dispatcher) Enqueue(n *domain.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		log.Printf("email dispatcher closed, dropping email for notification %s", n.ID)
		return false
	}

	select {
	case d.queue <- n:
		return true
	default:
		log.Printf("email queue full, dropping email for notification %s (user %s)", n.ID, n.UserID)
		return false
	}
}

// Close stops accepting emails and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for n := range d.queue {
		d.send(n)
	}
}

func (d *Dispatcher) send(n *domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	recipient, err := d.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		log.Printf("failed to load recipient %s for notification %s: %v", n.UserID, n.ID, err)
		return
	}
	if recipient == nil || recipient.Email == "" {
		log.Printf("no email address for recipient %s of notification %s", n.UserID, n.ID)
		return
	}

	if err := d.mailer.SendNotification(ctx, recipient, n); err != nil {
		log.Printf("failed to send %s email to %s: %v", n.Type, recipient.Email, err)
	}
}

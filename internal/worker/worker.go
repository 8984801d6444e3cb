package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
)

type JobType string

const (
	JobTypeTaskReminder JobType = "task_reminder"
)

const (
	ReminderQueue = "jobs:reminders"
	deadQueue     = "jobs:dead"
)

type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	CreatedAt time.Time              `json:"created_at"`
	ProcessAt time.Time              `json:"process_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

// Queue enqueues jobs onto redis lists. It also implements the handlers'
// ReminderScheduler contract.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(queue string, jobType JobType, payload map[string]interface{}, processAt time.Time) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	job := Job{
		ID:        id.String(),
		Type:      jobType,
		Payload:   payload,
		MaxTries:  3,
		CreatedAt: time.Now(),
		ProcessAt: processAt,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return q.client.RPush(ctx, queue, data).Err()
}

// ScheduleReminder queues a due-date reminder for the task's assignee,
// processed an hour before the due date (or immediately when the due date is
// closer than that).
func (q *Queue) ScheduleReminder(task *models.Task) error {
	processAt := task.DueDate.Add(-time.Hour)
	if processAt.Before(time.Now()) {
		processAt = time.Now()
	}
	return q.Enqueue(ReminderQueue, JobTypeTaskReminder, map[string]interface{}{
		"task_id":          task.ID,
		"title":            task.Title,
		"due_date":         task.DueDate,
		"assigned_user_id": task.AssignedUserID,
	}, processAt)
}

func (q *Queue) Size(queue string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return q.client.LLen(ctx, queue).Result()
}

// Worker polls redis queues and dispatches jobs to registered handlers.
type Worker struct {
	client      *redis.Client
	handlers    map[JobType]JobHandler
	queues      []string
	pollTimeout time.Duration
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewWorker(client *redis.Client, queues ...string) *Worker {
	if len(queues) == 0 {
		queues = []string{ReminderQueue}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		client:      client,
		handlers:    make(map[JobType]JobHandler),
		queues:      queues,
		pollTimeout: 5 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetPollInterval adjusts how long a blocking pop waits before re-checking
// for shutdown.
func (w *Worker) SetPollInterval(d time.Duration) {
	if d > 0 {
		w.pollTimeout = d
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(concurrency int) {
	log.Printf("starting worker with %d goroutines", concurrency)
	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.loop()
	}
}

func (w *Worker) Stop() {
	log.Println("stopping worker...")
	w.cancel()
	w.wg.Wait()
	log.Println("worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			if err := w.processNext(); err != nil {
				log.Printf("error processing job: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNext() error {
	result, err := w.client.BLPop(w.ctx, w.pollTimeout, w.queues...).Result()
	if err != nil {
		if err == redis.Nil || w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("pop job: %w", err)
	}
	if len(result) < 2 {
		return fmt.Errorf("invalid job result")
	}

	queue, data := result[0], result[1]

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return fmt.Errorf("unmarshal job: %w", err)
	}

	if time.Now().Before(job.ProcessAt) {
		return w.requeue(queue, &job)
	}

	return w.execute(&job)
}

func (w *Worker) execute(job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no handler registered for job type %s", job.Type)
	}

	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	if err := handler(ctx, job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			log.Printf("job %s failed (attempt %d/%d), retrying: %v",
				job.ID, job.Attempts, job.MaxTries, err)
			return w.retry(job)
		}
		log.Printf("job %s failed permanently after %d attempts: %v",
			job.ID, job.Attempts, err)
		return w.moveToDeadQueue(job, err)
	}

	return nil
}

func (w *Worker) retry(job *Job) error {
	delay := time.Duration(1<<job.Attempts) * time.Minute
	job.ProcessAt = time.Now().Add(delay)
	return w.requeue(ReminderQueue, job)
}

func (w *Worker) requeue(queue string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return w.client.RPush(w.ctx, queue, data).Err()
}

func (w *Worker) moveToDeadQueue(job *Job, jobErr error) error {
	dead := map[string]interface{}{
		"original_job": job,
		"error":        jobErr.Error(),
		"failed_at":    time.Now(),
	}
	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("marshal dead job: %w", err)
	}
	return w.client.RPush(w.ctx, deadQueue, data).Err()
}

// LogReminder is the default reminder handler: it just records that the
// reminder fired. A deployment wanting email or chat delivery registers its
// own handler instead.
func LogReminder(ctx context.Context, job *Job) error {
	log.Printf("task reminder: %v (task %v) due %v",
		job.Payload["title"], job.Payload["task_id"], job.Payload["due_date"])
	return nil
}

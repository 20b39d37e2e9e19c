package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"nutrimatch-go-worker/enums"
	"nutrimatch-go-worker/services/metrics"
	"nutrimatch-go-worker/structs"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type EventLearner interface {
	LearnFromConsumption(ctx context.Context, event structs.ConsumptionEvent) error
	ApplyFeedback(ctx context.Context, userID, foodID int64, kind string) error
}

type ProfileJob interface {
	Start(ctx context.Context, param structs.ProfileQueueParam)
}

type ReportJob interface {
	Start(ctx context.Context, param structs.ReportQueueParam)
}

// Dispatcher routes queue messages to the learner and the batch jobs. Batch
// jobs keep per-run state, so every message gets a fresh job.
type Dispatcher struct {
	learner        EventLearner
	newProfileJob  func() ProfileJob
	newReportJob   func() ReportJob
	notifyMismatch func(structs.MismatchQueueResponse) error
	log            *logrus.Entry
}

func NewDispatcher(learner EventLearner, newProfileJob func() ProfileJob, newReportJob func() ReportJob, notifyMismatch func(structs.MismatchQueueResponse) error, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{learner: learner, newProfileJob: newProfileJob, newReportJob: newReportJob, notifyMismatch: notifyMismatch, log: log}
}

// Queues lists every queue the dispatcher understands.
func (d *Dispatcher) Queues() []string {
	return []string{enums.ConsumptionQueue, enums.FeedbackQueue, enums.ProfileInitQueue, enums.NutritionReportQueue}
}

// Handle processes one message body received on queue.
func (d *Dispatcher) Handle(ctx context.Context, queue string, body []byte) error {
	logwg := d.log.WithField("queue", queue)
	logwg.WithField("body", string(body)).Info("message received")

	switch queue {
	case enums.ConsumptionQueue:
		var event structs.ConsumptionEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return structs.BadInput("consumption event: %v", err)
		}
		return d.learner.LearnFromConsumption(ctx, event)

	case enums.FeedbackQueue:
		var event structs.FeedbackEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return structs.BadInput("feedback event: %v", err)
		}
		return d.learner.ApplyFeedback(ctx, event.UserID, event.FoodID, event.Feedback)

	case enums.ProfileInitQueue:
		var param structs.ProfileQueueParam
		if err := json.Unmarshal(body, &param); err != nil {
			return structs.BadInput("profile-init param: %v", err)
		}
		if param.QueueType != queue {
			return d.mismatch(param.TaskID, queue, param.QueueType)
		}
		d.newProfileJob().Start(ctx, param)
		return nil

	case enums.NutritionReportQueue:
		var param structs.ReportQueueParam
		if err := json.Unmarshal(body, &param); err != nil {
			return structs.BadInput("nutrition-report param: %v", err)
		}
		if param.QueueType != queue {
			return d.mismatch(param.TaskID, queue, param.QueueType)
		}
		d.newReportJob().Start(ctx, param)
		return nil
	}
	return structs.BadInput("unknown queue %q", queue)
}

func (d *Dispatcher) mismatch(taskID uint, queue, queueType string) error {
	d.log.WithFields(logrus.Fields{"task_id": taskID, "queue": queue, "queue_type": queueType}).Warn("queue mismatch")
	if err := d.notifyMismatch(structs.MismatchQueueResponse{TaskId: taskID, Queue: queue}); err != nil {
		return fmt.Errorf("mismatch callback for task %d: %w", taskID, err)
	}
	return nil
}

// Consume handles deliveries until the channel closes. Failed messages are
// logged and dropped.
func (d *Dispatcher) Consume(ctx context.Context, queue string, deliveries <-chan amqp.Delivery) {
	for delivery := range deliveries {
		result := "ok"
		if err := d.Handle(ctx, queue, delivery.Body); err != nil {
			result = structs.ErrorKind(err)
			d.log.WithFields(logrus.Fields{"queue": queue, "message_id": delivery.MessageId, "error_message": err.Error()}).Error("message failed")
		}
		metrics.QueueMessages.WithLabelValues(queue, result).Inc()
	}
}

package task

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/blues/launchpad/internal/clock"
	"github.com/blues/launchpad/internal/event"
	"github.com/blues/launchpad/internal/logger"
	"github.com/blues/launchpad/internal/repository"
)

// PublishJob 事件发布任务，按写入顺序把发件箱中的事件投递出去
type PublishJob struct {
	events    *repository.EventRepository
	publisher event.Publisher
	clock     clock.Clock
	interval  time.Duration
	batch     int
}

// NewPublishJob 创建事件发布任务
func NewPublishJob(events *repository.EventRepository, publisher event.Publisher, clk clock.Clock, interval time.Duration, batch int) *PublishJob {
	if batch <= 0 {
		batch = 100
	}
	return &PublishJob{
		events:    events,
		publisher: publisher,
		clock:     clk,
		interval:  interval,
		batch:     batch,
	}
}

// GetName 获取任务名称
func (j *PublishJob) GetName() string {
	return "escrow_event_publisher"
}

// GetSchedule 获取调度配置
func (j *PublishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *PublishJob) Execute(ctx context.Context) {
	published, err := j.Publish(ctx)
	if err != nil {
		logger.Error("Event publish task stopped after %d events: %v", published, err)
		return
	}
	if published > 0 {
		logger.Info("Event publish task completed. Published %d events", published)
	}
}

// Publish 投递一批事件，遇到失败即停止以保证顺序
func (j *PublishJob) Publish(ctx context.Context) (int, error) {
	events, err := j.events.ListUnprocessed(ctx, j.batch)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, e := range events {
		if err := j.publisher.Publish(ctx, e); err != nil {
			return published, err
		}
		if err := j.events.MarkProcessed(ctx, e.Id, j.clock.Now()); err != nil {
			return published, err
		}
		logger.Debug("Published event %d (%s) for project %s", e.Id, e.EventType, e.ProjectId)
		published++
	}
	return published, nil
}

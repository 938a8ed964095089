package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
	"research-agenda/backend/pkg/metrics"
)

const cycleLockKey = "agenda:reminder:cycle"

// Locker 跨进程互斥，防止外部定时器重叠触发时并行执行两轮
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// Report 一轮派发的统计
type Report struct {
	Due     int
	Sent    int
	Failed  int
	Skipped int
	// Locked 为 true 表示另一轮正在执行，本轮未做任何事
	Locked bool
}

// Options 提醒周期参数
type Options struct {
	Location *time.Location
	LockTTL  time.Duration
	Timeout  time.Duration
}

// Cycle 执行一轮提醒：加载已启用提醒 → 解析活动与邮箱 → 判定 → 派发
type Cycle struct {
	repo       *repository.Repository
	evaluator  *Evaluator
	dispatcher *Dispatcher
	locker     Locker
	metrics    *metrics.Metrics
	opts       Options
	logger     *zap.Logger
}

// NewCycle 创建提醒周期；locker 为 nil 时不加锁
func NewCycle(repo *repository.Repository, mailer Mailer, locker Locker, m *metrics.Metrics, opts Options, logger *zap.Logger) *Cycle {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}
	return &Cycle{
		repo:       repo,
		evaluator:  NewEvaluator(opts.Location),
		dispatcher: NewDispatcher(repo.Reminder, mailer, m, opts.Location, logger),
		locker:     locker,
		metrics:    m,
		opts:       opts,
		logger:     logger,
	}
}

// Run 以 now 为评估时刻执行一轮
func (c *Cycle) Run(ctx context.Context, now time.Time) (*Report, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { c.metrics.ObserveCycle(time.Since(start)) }()

	// 1. 加锁；Redis 不可用时降级为无锁执行
	if c.locker != nil {
		token, ok, err := c.locker.AcquireLock(ctx, cycleLockKey, c.opts.LockTTL)
		switch {
		case err != nil:
			c.logger.Warn("获取提醒周期锁失败，无锁执行", zap.Error(err))
		case !ok:
			c.logger.Info("另一轮提醒正在执行，跳过本轮")
			return &Report{Locked: true}, nil
		default:
			defer func() {
				if err := c.locker.ReleaseLock(context.WithoutCancel(ctx), cycleLockKey, token); err != nil {
					c.logger.Warn("释放提醒周期锁失败", zap.Error(err))
				}
			}()
		}
	}

	// 2. 加载已启用的提醒；存储不可用时得到空列表
	reminders, err := c.repo.Reminder.ListEnabled(ctx)
	if err != nil {
		c.logger.Error("加载提醒失败", zap.Error(err))
		return nil, err
	}

	// 3. 按类型批量解析活动
	activities, err := c.resolveActivities(ctx, reminders)
	if err != nil {
		return nil, err
	}

	// 4. 判定
	report := &Report{}
	var due []*Due
	for i := range reminders {
		r := reminders[i]
		var activity *model.Activity
		if a, ok := activities[r.ActivityType][r.ActivityID]; ok && a.UserID == r.UserID {
			activity = &a
		}

		decision := c.evaluator.Evaluate(&r, activity, now)
		if decision.Skip != "" {
			report.Skipped++
			c.metrics.ReminderSkipped(decision.Skip)
			c.logger.Info("跳过提醒",
				zap.Int64("reminder_id", r.ID),
				zap.String("reason", decision.Skip),
			)
			continue
		}
		if !decision.Due {
			continue
		}
		due = append(due, &Due{
			Reminder:  r,
			Activity:  *activity,
			EventDate: *EventDate(&r, activity),
		})
	}
	report.Due = len(due)
	if len(due) == 0 {
		return report, nil
	}

	// 5. 批量查询收件人邮箱
	emails, err := c.repo.User.GetEmails(ctx, ownerIDs(due))
	if err != nil {
		c.logger.Error("查询提醒收件人失败", zap.Error(err))
		return nil, err
	}

	// 6. 逐条派发，单条失败不影响其余
	for _, item := range due {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("提醒周期超时，剩余提醒留待下一轮", zap.Int("remaining", report.Due-report.Sent-report.Failed))
			break
		}
		item.Email = emails[item.Reminder.UserID]
		if c.dispatcher.Dispatch(ctx, item, now) {
			report.Sent++
		} else {
			report.Failed++
		}
	}

	c.logger.Info("提醒周期完成",
		zap.Int("due", report.Due),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (c *Cycle) resolveActivities(ctx context.Context, reminders []model.Reminder) (map[string]map[int64]model.Activity, error) {
	idsByType := make(map[string][]int64)
	for i := range reminders {
		r := &reminders[i]
		idsByType[r.ActivityType] = append(idsByType[r.ActivityType], r.ActivityID)
	}

	out := make(map[string]map[int64]model.Activity, len(idsByType))
	for activityType, ids := range idsByType {
		resolved, err := c.repo.Activity.Resolve(ctx, activityType, ids)
		if err != nil {
			c.logger.Error("解析提醒活动失败", zap.String("activity_type", activityType), zap.Error(err))
			return nil, err
		}
		out[activityType] = resolved
	}
	return out, nil
}

func ownerIDs(due []*Due) []int64 {
	seen := make(map[int64]bool, len(due))
	ids := make([]int64, 0, len(due))
	for _, item := range due {
		if !seen[item.Reminder.UserID] {
			seen[item.Reminder.UserID] = true
			ids = append(ids, item.Reminder.UserID)
		}
	}
	return ids
}

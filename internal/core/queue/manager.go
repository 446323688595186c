package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"fridge-inventory/internal/pkg/common"

	"go.uber.org/zap"
)

// Job 佇列中的作業
type Job func(ctx context.Context) (any, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Name    string
	Job     Job
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Value any
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int  `json:"queue_length"`
	ProcessedCount int  `json:"processed_count"`
	MaxQueueSize   int  `json:"max_queue_size"`
	Running        bool `json:"running"`
}

// ErrClosed 佇列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Manager 單一 worker 的作業佇列，掃描作業依序處理
type Manager struct {
	maxSize   int
	queue     chan *Request
	done      chan struct{}
	wg        sync.WaitGroup
	processed int64
	running   atomic.Bool
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(maxSize int) *Manager {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Manager{
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
		done:    make(chan struct{}),
	}
}

// Start 啟動 worker
func (m *Manager) Start() {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	m.wg.Add(1)
	go m.worker()
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case req := <-m.queue:
			m.process(req)
		case <-m.done:
			// 處理剩餘作業後結束
			for {
				select {
				case req := <-m.queue:
					m.process(req)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) process(req *Request) {
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}
	v, err := req.Job(req.Context)
	atomic.AddInt64(&m.processed, 1)
	req.Result <- Result{Value: v, Error: err}
}

// Enqueue 將作業加入隊列，佇列滿時回傳 TooManyRequests
func (m *Manager) Enqueue(ctx context.Context, name string, job Job) (<-chan Result, error) {
	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	req := &Request{
		Context: ctx,
		Name:    name,
		Job:     job,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.String("job", name),
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return req.Result, nil
	default:
		return nil, common.ErrTooManyRequests.WithMessage("掃描佇列已滿")
	}
}

// Submit 加入隊列並等待結果
func (m *Manager) Submit(ctx context.Context, name string, job Job) (any, error) {
	ch, err := m.Enqueue(ctx, name, job)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Value, res.Error
	case <-ctx.Done():
		return nil, common.ErrRequestTimeout.Wrap(ctx.Err())
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Running:        m.running.Load(),
	}
}

// Close 停止接收新作業，等待 worker 結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
	m.running.Store(false)
}

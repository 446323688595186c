package fridge

import (
	"context"
	"time"

	"fridge-inventory/internal/core/catalog"
	"fridge-inventory/internal/core/detect"
	"fridge-inventory/internal/core/image"
	"fridge-inventory/internal/core/inventory"
	"fridge-inventory/internal/core/normalize"
	"fridge-inventory/internal/core/queue"
	"fridge-inventory/internal/core/receipt"
	"fridge-inventory/internal/core/reconcile"
	"fridge-inventory/internal/infrastructure/lock"
	"fridge-inventory/internal/infrastructure/metrics"
	"fridge-inventory/internal/pkg/common"

	"go.uber.org/zap"
)

// Options 掃描相關設定
type Options struct {
	ConfidenceThreshold float64
	OCRMinConfidence    float64
	PreprocessReceipt   bool
}

// Deps 服務依賴
type Deps struct {
	Store      inventory.Store
	Catalog    *catalog.Catalog
	Engine     *reconcile.Engine
	Detector   detect.Detector
	Recognizer detect.TextRecognizer
	Images     *image.Service
	Queue      *queue.Manager
	Locker     lock.Locker
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Service 冰箱庫存應用服務：影像分析、收據處理、庫存管理
type Service struct {
	store      inventory.Store
	catalog    *catalog.Catalog
	normalizer *normalize.Normalizer
	matcher    *receipt.Matcher
	engine     *reconcile.Engine
	detector   detect.Detector
	recognizer detect.TextRecognizer
	images     *image.Service
	queue      *queue.Manager
	locker     lock.Locker
	metrics    *metrics.Metrics
	now        func() time.Time
	opts       Options
}

// FridgeScan 冰箱影像分析結果
type FridgeScan struct {
	Detections []detect.Detection `json:"detections"`
	Counts     map[string]int     `json:"counts"`
	Ignored    []string           `json:"ignored"`
	Report     *reconcile.Report  `json:"report"`
}

// ReceiptScan 收據處理結果
type ReceiptScan struct {
	Lines  []string          `json:"lines"`
	Items  []receipt.Item    `json:"items"`
	Report *reconcile.Report `json:"report"`
}

// NewService 創建應用服務
func NewService(d Deps, opts Options) *Service {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Locker == nil {
		d.Locker = lock.NewLocal()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Engine == nil {
		d.Engine = reconcile.NewEngine(d.Store, d.Catalog,
			reconcile.WithLocker(d.Locker),
			reconcile.WithMetrics(d.Metrics),
			reconcile.WithClock(d.Now),
		)
	}
	if d.Detector == nil {
		d.Detector = detect.Unavailable{Reason: "not configured"}
	}
	if d.Recognizer == nil {
		d.Recognizer = detect.Unavailable{Reason: "not configured"}
	}
	return &Service{
		store:      d.Store,
		catalog:    d.Catalog,
		normalizer: normalize.NewNormalizer(d.Catalog),
		matcher:    receipt.NewMatcher(d.Catalog),
		engine:     d.Engine,
		detector:   d.Detector,
		recognizer: d.Recognizer,
		images:     d.Images,
		queue:      d.Queue,
		locker:     d.Locker,
		metrics:    d.Metrics,
		now:        d.Now,
		opts:       opts,
	}
}

// AnalyzeFridgeImageFile 讀取本機圖片並分析
func (s *Service) AnalyzeFridgeImageFile(ctx context.Context, path string) (*FridgeScan, error) {
	img, err := s.images.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeFridgeImage(ctx, img)
}

// AnalyzeFridgeImage 偵測、過濾、正規化後以影像規則對帳
func (s *Service) AnalyzeFridgeImage(ctx context.Context, img []byte) (*FridgeScan, error) {
	v, err := s.submit(ctx, "fridge", func(ctx context.Context) (any, error) {
		prepared, err := s.images.PrepareForDetection(img)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		raw, err := s.detector.Detect(ctx, prepared)
		s.metrics.ObserveDetector("vision", time.Since(start), err)
		if err != nil {
			common.LogError("影像偵測失敗", zap.Error(err))
			return nil, asDetectorError(err)
		}

		scan := &FridgeScan{Counts: map[string]int{}, Ignored: []string{}}
		for _, d := range detect.FilterDetections(raw, s.opts.ConfidenceThreshold) {
			class := s.normalizer.Normalize(normalize.CanonicalLabel(d.ClassLabel))
			if class == "" {
				continue
			}
			if !s.catalog.IsTarget(class) {
				scan.Ignored = append(scan.Ignored, class)
				continue
			}
			d.ClassLabel = class
			scan.Detections = append(scan.Detections, d)
			scan.Counts[class]++
		}

		rep, err := s.engine.ReconcileVisionDetections(ctx, scan.Detections)
		if err != nil {
			return nil, err
		}
		scan.Report = rep
		common.LogInfo("冰箱影像分析完成",
			zap.Int("raw", len(raw)),
			zap.Int("kept", len(scan.Detections)),
			zap.Int("ignored", len(scan.Ignored)),
		)
		return scan, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*FridgeScan), nil
}

// ProcessReceiptImageFile 讀取本機收據圖片並處理
func (s *Service) ProcessReceiptImageFile(ctx context.Context, path string) (*ReceiptScan, error) {
	img, err := s.images.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ProcessReceiptImage(ctx, img)
}

// ProcessReceiptImage 前處理、文字辨識後以收據規則對帳
func (s *Service) ProcessReceiptImage(ctx context.Context, img []byte) (*ReceiptScan, error) {
	v, err := s.submit(ctx, "receipt", func(ctx context.Context) (any, error) {
		var (
			prepared []byte
			err      error
		)
		if s.opts.PreprocessReceipt {
			prepared, err = s.images.PreprocessReceipt(img)
		} else {
			err = s.images.ValidateImage(img)
			prepared = img
		}
		if err != nil {
			return nil, err
		}

		start := time.Now()
		lines, err := s.recognizer.Recognize(ctx, prepared)
		s.metrics.ObserveDetector("ocr", time.Since(start), err)
		if err != nil {
			common.LogError("文字辨識失敗", zap.Error(err))
			return nil, asDetectorError(err)
		}
		return s.reconcileLines(ctx, lines)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ReceiptScan), nil
}

// ProcessReceiptText 處理已辨識的文字行
func (s *Service) ProcessReceiptText(ctx context.Context, lines []detect.TextLine) (*ReceiptScan, error) {
	v, err := s.submit(ctx, "receipt_text", func(ctx context.Context) (any, error) {
		return s.reconcileLines(ctx, lines)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ReceiptScan), nil
}

func (s *Service) reconcileLines(ctx context.Context, lines []detect.TextLine) (*ReceiptScan, error) {
	kept := detect.FilterLines(lines, s.opts.OCRMinConfidence)
	items := s.matcher.Parse(kept)

	rep, err := s.engine.ReconcileReceiptItems(ctx, items)
	if err != nil {
		return nil, err
	}
	common.LogInfo("收據處理完成",
		zap.Int("lines", len(lines)),
		zap.Int("kept", len(kept)),
		zap.Int("items", len(items)),
	)
	return &ReceiptScan{Lines: kept, Items: items, Report: rep}, nil
}

// submit 有佇列時依序執行，否則直接執行
func (s *Service) submit(ctx context.Context, name string, job queue.Job) (any, error) {
	if s.queue == nil {
		return job(ctx)
	}
	return s.queue.Submit(ctx, name, job)
}

// asDetectorError 偵測服務的任何失敗都回報為 DetectorUnavailable
func asDetectorError(err error) error {
	ce := common.AsCustomError(err)
	if ce.Code == common.ErrCodeDetectorUnavailable {
		return ce
	}
	return common.ErrDetectorUnavailable.Wrap(err)
}

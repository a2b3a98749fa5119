package vision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/your-org/attend/internal/config"
	"github.com/your-org/attend/internal/observability"
)

// Extraction is the transient per-image result: the selected face's
// normalized embedding, its bounding box, and the raw pose angles when the
// pose model is present. Consumed immediately; never persisted.
type Extraction struct {
	Embedding []float32
	BBox      [4]float32
	RawPose   *[3]float32
}

// Engine wraps the detector, embedder and optional pose model behind a
// lazily-initialized process-wide instance. Construction is cheap; the
// ONNX sessions load on first use (they take seconds) behind a one-time
// lock, so application startup is never blocked. A load failure is sticky:
// every subsequent call fails fast with ErrModelUnavailable.
type Engine struct {
	cfg       config.VisionConfig
	recognCfg config.RecognitionConfig

	once    sync.Once
	loadErr error
	ready   atomic.Bool

	mu       sync.Mutex // serializes inference; sessions share input tensors
	detector *Detector
	embedder *Embedder
	pose     *PosePredictor // nil when the model file is absent
}

// NewEngine returns an engine that will load models on first use.
func NewEngine(cfg config.VisionConfig, recognCfg config.RecognitionConfig) *Engine {
	return &Engine{cfg: cfg, recognCfg: recognCfg}
}

func (e *Engine) load() error {
	e.once.Do(func() {
		detPath := filepath.Join(e.cfg.ModelsDir, "det_10g.onnx")
		embPath := filepath.Join(e.cfg.ModelsDir, "w600k_r50.onnx")
		posePath := filepath.Join(e.cfg.ModelsDir, "headpose.onnx")

		slog.Info("loading detection model", "path", detPath)
		det, err := NewDetector(detPath, float32(e.cfg.DetectionThreshold), nil)
		if err != nil {
			e.loadErr = fmt.Errorf("%w: load detector: %v", ErrModelUnavailable, err)
			return
		}

		slog.Info("loading embedding model", "path", embPath)
		emb, err := NewEmbedder(embPath)
		if err != nil {
			det.Close()
			e.loadErr = fmt.Errorf("%w: load embedder: %v", ErrModelUnavailable, err)
			return
		}

		// The pose head is optional; without it pose checks degrade to
		// a default front classification.
		if _, err := os.Stat(posePath); err == nil {
			slog.Info("loading head-pose model", "path", posePath)
			pose, err := NewPosePredictor(posePath)
			if err != nil {
				slog.Warn("load pose model", "error", err)
			} else {
				e.pose = pose
			}
		} else {
			slog.Info("head-pose model not found, pose checks will report front", "path", posePath)
		}

		e.detector = det
		e.embedder = emb
		e.ready.Store(true)
		slog.Info("vision engine ready")
	})
	return e.loadErr
}

// Extract detects faces in a BGR frame, selects the one with the largest
// bounding box, and returns its L2-normalized embedding. When enhancement
// is enabled the detector first sees the enhanced frame and falls back to
// the raw one if nothing is found there; only then does the call fail
// with ErrNoFaceDetected.
func (e *Engine) Extract(img *Image) (*Extraction, error) {
	if err := e.load(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	detections, err := e.detectWithFallback(img)
	if err != nil {
		return nil, err
	}

	face := detections[PrimaryFace(detections)]

	crop := cropFace(img, face.BBox)
	if crop == nil {
		return nil, ErrNoFaceDetected
	}

	start := time.Now()
	embedding, err := e.embedder.Extract(crop)
	observability.InferenceDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	out := &Extraction{Embedding: embedding, BBox: face.BBox}

	if e.pose != nil {
		start = time.Now()
		raw, err := e.pose.Predict(crop)
		observability.InferenceDuration.WithLabelValues("pose").Observe(time.Since(start).Seconds())
		if err != nil {
			slog.Warn("pose predict", "error", err)
		} else {
			out.RawPose = &raw
		}
	}

	return out, nil
}

// DetectPose finds the primary face and classifies its head orientation.
// Models without a pose head produce a front result with zeroed angles.
func (e *Engine) DetectPose(img *Image) (*PoseResult, error) {
	if err := e.load(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	detections, err := e.detectWithFallback(img)
	if err != nil {
		return nil, err
	}

	face := detections[PrimaryFace(detections)]

	var raw *[3]float32
	if e.pose != nil {
		if crop := cropFace(img, face.BBox); crop != nil {
			angles, err := e.pose.Predict(crop)
			if err != nil {
				slog.Warn("pose predict", "error", err)
			} else {
				raw = &angles
			}
		}
	}

	result := ClassifyAngles(raw, e.recognCfg.PoseAngleThreshold)
	result.BBox = face.BBox
	return &result, nil
}

// detectWithFallback runs detection, optionally on the enhanced frame
// first with a raw-frame retry. Caller holds e.mu.
func (e *Engine) detectWithFallback(img *Image) ([]Detection, error) {
	frame := img
	enhanced := false
	if e.cfg.EnhanceImages {
		start := time.Now()
		frame = Enhance(img)
		observability.InferenceDuration.WithLabelValues("enhance").Observe(time.Since(start).Seconds())
		enhanced = true
	}

	start := time.Now()
	detections, err := e.detector.Detect(frame)
	observability.InferenceDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	if len(detections) == 0 && enhanced {
		slog.Debug("no face on enhanced frame, retrying raw")
		detections, err = e.detector.Detect(img)
		if err != nil {
			return nil, fmt.Errorf("detect raw: %w", err)
		}
	}

	if len(detections) == 0 {
		return nil, ErrNoFaceDetected
	}
	return detections, nil
}

// Ready reports whether the models have been loaded successfully. It never
// triggers a load itself and is safe to call while a load is in flight.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// Close releases all ONNX sessions.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detector != nil {
		e.detector.Close()
	}
	if e.embedder != nil {
		e.embedder.Close()
	}
	if e.pose != nil {
		e.pose.Close()
	}
}

// cropFace extracts a face region with 10% padding on each side,
// clamped to the frame.
func cropFace(img *Image, bbox [4]float32) *Image {
	x1 := int(bbox[0])
	y1 := int(bbox[1])
	x2 := int(bbox[2])
	y2 := int(bbox[3])

	w := x2 - x1
	h := y2 - y1
	if w <= 0 || h <= 0 {
		return nil
	}

	padW := int(float32(w) * 0.1)
	padH := int(float32(h) * 0.1)

	return img.Crop(x1-padW, y1-padH, x2+padW, y2+padH)
}

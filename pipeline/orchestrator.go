// Package pipeline turns transmission events into delivered text: it
// records, transcribes, optionally augments through an LLM, puts the
// result on the clipboard and persists a history entry.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"murmur/config"
	"murmur/history"
	"murmur/hotkey"
	"murmur/llm"
	"murmur/log"
	"murmur/notify"
	"murmur/recorder"
	"murmur/screenshot"
	"murmur/transcriber"
	"murmur/tts"
)

// settleDelay lets the OS audio stack flush its last buffers before the
// artifact is read back. Stopping and transcribing immediately clips
// the tail of the capture.
const settleDelay = 500 * time.Millisecond

// Clipboard is the delivery surface. Satisfied by clipboard.Service.
type Clipboard interface {
	SetText(text string) error
	Text() (string, error)
	Paste() error
}

// Historian persists completed transmissions. Satisfied by history.Log.
type Historian interface {
	Append(e history.Entry) error
}

// transmission is the per-run state carried from start to end event.
type transmission struct {
	mode     hotkey.Mode
	artifact string
	started  time.Time
}

// Orchestrator implements hotkey.Observer and runs the capture pipeline
// on a small worker pool so a slow transcription cannot block the next
// transmission from starting.
type Orchestrator struct {
	cfg      *config.Store
	rec      recorder.Recorder
	trans    transcriber.Transcriber
	complete func(cfg config.Config) llm.Completer
	clip     Clipboard
	player   notify.Player
	hist     Historian
	speaker  tts.Speaker
	capt     screenshot.Capturer

	settle time.Duration
	sleep  func(time.Duration)

	mu    sync.Mutex
	cur   *transmission
	sinks []Sink

	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// Deps bundles the pipeline's collaborators. Completer selects the
// active LLM provider from a config snapshot; it may return nil when no
// provider is configured.
type Deps struct {
	Config     *config.Store
	Recorder   recorder.Recorder
	Transcribe transcriber.Transcriber
	Completer  func(cfg config.Config) llm.Completer
	Clipboard  Clipboard
	Player     notify.Player
	History    Historian
	Speaker    tts.Speaker
	Capturer   screenshot.Capturer
}

func New(d Deps) *Orchestrator {
	return &Orchestrator{
		cfg:      d.Config,
		rec:      d.Recorder,
		trans:    d.Transcribe,
		complete: d.Completer,
		clip:     d.Clipboard,
		player:   d.Player,
		hist:     d.History,
		speaker:  d.Speaker,
		capt:     d.Capturer,
		settle:   settleDelay,
		sleep:    time.Sleep,
		tasks:    make(chan func(), 8),
	}
}

// Subscribe registers a sink. Register everything before Start.
func (o *Orchestrator) Subscribe(s Sink) {
	o.sinks = append(o.sinks, s)
}

// Start launches the worker pool.
func (o *Orchestrator) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for task := range o.tasks {
				task()
			}
		}()
	}
}

// Close stops accepting work and waits for in-flight runs to finish.
func (o *Orchestrator) Close() {
	o.once.Do(func() { close(o.tasks) })
	o.wg.Wait()
}

func (o *Orchestrator) completed(mode hotkey.Mode, text string, elapsed time.Duration) {
	for _, s := range o.sinks {
		s.PipelineCompleted(mode, text, elapsed)
	}
}

func (o *Orchestrator) fail(stage string, err error) {
	log.Errorf("pipeline %s: %v", stage, err)
	o.player.Play(notify.KindError)
	for _, s := range o.sinks {
		s.PipelineError(stage, err)
	}
}

// TransmissionStarted implements hotkey.Observer: begin recording into
// a fresh artifact file.
func (o *Orchestrator) TransmissionStarted(mode hotkey.Mode) {
	cfg := o.cfg.Snapshot()
	name := "murmur_" + uuid.NewString() + recorder.Ext(cfg.ArtifactFormat)
	path := filepath.Join(cfg.TempDir, name)

	if err := o.rec.Start(path); err != nil {
		o.fail("recorder start", err)
		return
	}

	o.mu.Lock()
	o.cur = &transmission{mode: mode, artifact: path, started: time.Now()}
	o.mu.Unlock()
	log.Infof("transmission started: mode=%s artifact=%s", mode, name)
}

// TransmissionEnded implements hotkey.Observer: stop recording and hand
// the artifact to a worker.
func (o *Orchestrator) TransmissionEnded(mode hotkey.Mode) {
	o.mu.Lock()
	t := o.cur
	o.cur = nil
	o.mu.Unlock()

	if t == nil {
		// Start failed earlier; nothing to process.
		return
	}

	if err := o.rec.Stop(); err != nil {
		o.fail("recorder stop", err)
		o.cleanup(o.cfg.Snapshot(), t.artifact)
		return
	}

	o.submit(func() { o.run(t) })
}

// TTSTriggered implements hotkey.Observer: speak the clipboard.
func (o *Orchestrator) TTSTriggered() {
	o.submit(func() {
		text, err := o.clip.Text()
		if err != nil {
			o.fail("tts clipboard read", err)
			return
		}
		if err := o.speaker.Speak(context.Background(), text); err != nil {
			o.fail("tts", err)
			return
		}
		log.Info("spoke clipboard contents")
	})
}

// VisionCaptureStarted implements hotkey.Observer: capture the screen
// and send it straight to the vision model, no audio involved.
func (o *Orchestrator) VisionCaptureStarted() {
	o.submit(func() {
		start := time.Now()
		cfg := o.cfg.Snapshot()

		shot, err := o.capt.Capture()
		if err != nil {
			o.fail("screen capture", err)
			return
		}
		defer os.Remove(shot)

		comp := o.complete(cfg)
		if comp == nil || !comp.IsConfigured() {
			o.fail("vision", fmt.Errorf("no llm provider configured"))
			return
		}
		resp, err := comp.Complete(context.Background(), llm.Request{
			User:      cfg.VisionPrompt,
			Model:     o.visionModel(cfg),
			ImagePath: shot,
		})
		if err != nil {
			o.fail("vision", err)
			return
		}

		delivered := true
		if err := o.clip.SetText(resp); err != nil {
			o.fail("delivery", err)
			delivered = false
		}
		if delivered && cfg.NotifyLLM {
			o.player.Play(notify.KindLLM)
		}
		o.persist(cfg, history.Entry{
			Mode:     hotkey.ModeVisionImmediate.String(),
			Response: resp,
			Model:    o.visionModel(cfg),
		})
		if delivered {
			o.completed(hotkey.ModeVisionImmediate, resp, time.Since(start))
		}
	})
}

func (o *Orchestrator) submit(task func()) {
	defer func() {
		// Tasks arriving after Close are dropped, not panicking.
		if recover() != nil {
			log.Warn("pipeline closed, dropping task")
		}
	}()
	o.tasks <- task
}

// run processes one finished transmission end to end.
func (o *Orchestrator) run(t *transmission) {
	cfg := o.cfg.Snapshot()

	// Vision holds snapshot the screen as it was at release, before the
	// settle delay and transcription round-trip can let it change.
	var shot string
	var shotErr error
	if t.mode == hotkey.ModeVisionHold {
		shot, shotErr = o.capt.Capture()
		if shot != "" {
			defer os.Remove(shot)
		}
	}

	// Let the audio backend flush before reading the artifact back.
	o.sleep(o.settle)

	info, err := os.Stat(t.artifact)
	if err != nil || info.Size() == 0 {
		o.fail("artifact", fmt.Errorf("recording artifact missing or empty: %s", t.artifact))
		o.cleanup(cfg, t.artifact)
		return
	}

	// Recorders with voice detection let silent artifacts skip the
	// transcription call entirely.
	if vd, ok := o.rec.(interface{ VoiceDetected() bool }); ok && !vd.VoiceDetected() {
		o.fail("transcription", fmt.Errorf("no speech detected"))
		o.cleanup(cfg, t.artifact)
		return
	}

	res, err := o.trans.Transcribe(context.Background(), t.artifact)
	if err != nil {
		o.fail("transcription", err)
		o.cleanup(cfg, t.artifact)
		return
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		o.fail("transcription", fmt.Errorf("no speech detected"))
		o.cleanup(cfg, t.artifact)
		return
	}
	log.TranscriptText(text)

	entry := history.Entry{
		Mode:         t.mode.String(),
		Transcript:   text,
		Transcriber:  o.trans.Name(),
		ArtifactPath: t.artifact,
		Duration:     res.Duration,
	}

	deliver := text
	kind := notify.KindPlain
	softFailed := false

	if t.mode.Augmented() {
		resp, model, err := o.augment(cfg, t.mode, text, shot, shotErr)
		if err != nil {
			// Soft failure: record it, tell the sinks, and still
			// deliver the raw transcript.
			entry.Annotation = err.Error()
			softFailed = true
			o.persist(cfg, entry)
			o.fail("augmentation", err)
		} else {
			deliver = resp
			kind = notify.KindLLM
			entry.Response = resp
			entry.Model = model
		}
	}

	// Delivery failure is non-fatal: the transcript is still persisted.
	delivered := true
	if err := o.clip.SetText(deliver); err != nil {
		o.fail("delivery", err)
		delivered = false
	}
	if delivered && cfg.AutoPaste {
		if err := o.clip.Paste(); err != nil {
			log.Warnf("auto paste failed: %v", err)
		}
	}

	switch {
	case !delivered || softFailed:
		// Error tone already played by fail.
	case kind == notify.KindLLM && cfg.NotifyLLM:
		o.player.Play(notify.KindLLM)
	case kind == notify.KindPlain && cfg.NotifyPlain:
		o.player.Play(notify.KindPlain)
	}

	if !softFailed {
		o.persist(cfg, entry)
	}
	o.cleanup(cfg, t.artifact)

	if !softFailed && delivered {
		o.completed(t.mode, deliver, time.Since(t.started))
	}
}

// augment runs the transcript through the configured LLM provider.
// For vision holds the screenshot was already taken at stop; shot and
// shotErr carry its outcome.
func (o *Orchestrator) augment(cfg config.Config, mode hotkey.Mode, text, shot string, shotErr error) (string, string, error) {
	comp := o.complete(cfg)
	if comp == nil || !comp.IsConfigured() {
		return "", "", fmt.Errorf("llm provider not configured")
	}

	req := llm.Request{Model: o.textModel(cfg)}
	switch mode {
	case hotkey.ModePrompt:
		req.System = cfg.PromptSystem
		req.User = text
	case hotkey.ModeCopyPrompt:
		// The spoken text is the instruction; the clipboard holds the
		// material it applies to.
		clip, err := o.clip.Text()
		if err != nil {
			return "", "", fmt.Errorf("read clipboard: %w", err)
		}
		req.System = text
		req.User = clip
	case hotkey.ModeVisionHold:
		if shotErr != nil {
			return "", "", fmt.Errorf("screen capture: %w", shotErr)
		}
		req.System = cfg.VisionPrompt
		req.User = text
		req.ImagePath = shot
		req.Model = o.visionModel(cfg)
	}

	resp, err := comp.Complete(context.Background(), req)
	if err != nil {
		return "", "", err
	}
	return resp, req.Model, nil
}

func (o *Orchestrator) textModel(cfg config.Config) string {
	if cfg.Provider == "claude" {
		return cfg.ClaudeModel
	}
	return cfg.OpenAIModel
}

func (o *Orchestrator) visionModel(cfg config.Config) string {
	// Both providers use their configured chat model for vision.
	return o.textModel(cfg)
}

func (o *Orchestrator) persist(cfg config.Config, e history.Entry) {
	if !cfg.HistoryEnabled || o.hist == nil {
		return
	}
	if e.Transcript == "" && e.Response == "" {
		return
	}
	if err := o.hist.Append(e); err != nil {
		log.Warnf("history append failed: %v", err)
	}
}

func (o *Orchestrator) cleanup(cfg config.Config, artifact string) {
	if cfg.RetainRecordings || artifact == "" {
		return
	}
	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		log.Warnf("artifact cleanup failed: %v", err)
	}
}

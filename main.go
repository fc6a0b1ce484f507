package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"murmur/clipboard"
	"murmur/config"
	"murmur/history"
	"murmur/hotkey"
	"murmur/llm"
	"murmur/log"
	"murmur/notify"
	"murmur/pipeline"
	"murmur/recorder"
	"murmur/screenshot"
	"murmur/shutdown"
	"murmur/transcriber"
	"murmur/tts"
)

var version = "dev"

var completedCount atomic.Int64

// countingSink feeds the session summary logged at shutdown.
type countingSink struct{}

func (countingSink) PipelineCompleted(mode hotkey.Mode, text string, elapsed time.Duration) {
	completedCount.Add(1)
	log.Infof("pipeline completed: mode=%s chars=%d elapsed=%s", mode, len(text), elapsed.Round(time.Millisecond))
}

func (countingSink) PipelineError(stage string, err error) {
	log.Errorf("pipeline failed at %s: %v", stage, err)
}

var shutdownOnce sync.Once

func gracefulShutdown(cleanup func()) {
	shutdownOnce.Do(func() {
		log.SessionEnd(int(completedCount.Load()))
		cleanup()
		log.Close()
		os.Exit(0)
	})
}

func main() {
	configFlag := flag.String("config", "", "config file path (default: OS-specific location)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	muteFlag := flag.Bool("mute", false, "Disable notification tones")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: log init failed: %v\n", err)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath, err = config.DefaultPath()
		if err != nil {
			log.Errorf("config path resolution failed: %v", err)
			fmt.Fprintf(os.Stderr, "Error: cannot resolve config path: %v\n", err)
			os.Exit(1)
		}
	}
	store, err := config.Load(configPath)
	if err != nil {
		log.Errorf("config load failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
		os.Exit(1)
	}
	cfg := store.Snapshot()

	if *muteFlag {
		notify.Disable()
	}
	player := notify.NewTonePlayer()

	clip := clipboard.New()

	mic, err := recorder.NewMic(cfg.ArtifactFormat)
	if err != nil {
		log.Errorf("microphone init failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing microphone: %v\n", err)
		os.Exit(1)
	}
	trans := transcriber.NewWhisper(cfg.WhisperURL, cfg.WhisperAPIKey, cfg.WhisperModel, cfg.Language)

	completer := func(c config.Config) llm.Completer {
		if c.Provider == "claude" {
			return llm.NewClaude(c.ClaudeAPIKey)
		}
		return llm.NewOpenAI(c.OpenAIAPIKey, c.OpenAIBaseURL)
	}

	var hist *history.Log
	if cfg.HistoryEnabled {
		dir := cfg.HistoryDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(configPath), "history")
		}
		hist, err = history.Open(dir)
		if err != nil {
			log.Warnf("history disabled, open failed: %v", err)
		}
	}

	orch := pipeline.New(pipeline.Deps{
		Config:     store,
		Recorder:   mic,
		Transcribe: trans,
		Completer:  completer,
		Clipboard:  clip,
		Player:     player,
		History:    historian(hist),
		Speaker:    tts.NewBridge(cfg.TTSCommand),
		Capturer:   screenshot.NewTool(cfg.TempDir),
	})
	orch.Subscribe(countingSink{})
	orch.Start(2)

	machine := hotkey.NewMachine(cfg.Triggers())
	machine.Subscribe(orch)

	store.Subscribe(func(c config.Config) {
		mic.SetFormat(c.ArtifactFormat)
		machine.SetTriggers(c.Triggers())
		log.Info("config reloaded")
	})

	listener := hotkey.NewListener(hotkey.NewGohook(hotkey.DefaultTranslate), machine, time.Second)

	cleanup := func() {
		listener.Stop()
		orch.Close()
		mic.Close()
		clip.Close()
		if hist != nil {
			hist.Close()
		}
	}
	listener.OnFatal(func(err error) {
		fmt.Fprintf(os.Stderr, "Fatal: key listener unrecoverable: %v\n", err)
		gracefulShutdown(cleanup)
	})

	if err := listener.Start(); err != nil {
		log.Errorf("key listener start failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error installing key hook: %v\n", err)
		os.Exit(1)
	}

	log.SessionStart(trans.Name(), cfg.Provider)
	log.Infof("murmur %s ready: capture=%d prompt=%d vision=%d", version, cfg.CaptureKey, cfg.PromptKey, cfg.VisionKey)

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	<-sigChan
	gracefulShutdown(cleanup)
}

// historian avoids handing the pipeline a typed-nil Historian when
// history is disabled.
func historian(h *history.Log) pipeline.Historian {
	if h == nil {
		return nil
	}
	return h
}

// Package genai adapts the Gemini API to the conversation driver
// contract: serialized speech and generation with tool calling, an
// away watchdog for silence detection, and usage accounting.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/webhook"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultAwayTimeout = 4 * time.Second

	generateTimeout   = 45 * time.Second
	toolResultTimeout = 30 * time.Second
)

// Config wires a Driver.
type Config struct {
	APIKey string
	// Model defaults to DefaultModel.
	Model string
	// Speak delivers a finished utterance to the audio layer (TTS,
	// console, websocket). Required.
	Speak func(text string)
	// AwayTimeout is how long the candidate may stay silent after the
	// last turn before an away event fires. Defaults to
	// DefaultAwayTimeout.
	AwayTimeout time.Duration
	Logger      *slog.Logger
}

type jobKind int

const (
	jobSay jobKind = iota
	jobGenerate
)

type job struct {
	kind jobKind
	text string
	opts flow.SayOptions
}

// Driver runs speech and generation on a single worker goroutine so
// utterances never interleave. Say and GenerateReply enqueue; results
// come back as events.
type Driver struct {
	client *genai.Client
	model  string
	speak  func(text string)
	logger *slog.Logger

	// generateContent performs one model round. Swapped out in tests.
	generateContent func(ctx context.Context, history []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	events   chan flow.Event
	jobs     chan job
	userText chan string
	done     chan struct{}
	wg       sync.WaitGroup

	awayTimeout time.Duration

	// Loop-owned; no lock needed.
	history    []*genai.Content
	nextCallID int

	mu           sync.Mutex
	instructions string
	tools        []flow.ToolSpec
	pending      map[string]chan string
	usage        webhook.Usage
	closed       bool
	drainOnClose bool
}

// New creates a Gemini-backed driver and starts its worker.
func New(ctx context.Context, cfg Config) (*Driver, error) {
	if cfg.Speak == nil {
		return nil, errors.New("genai: Speak callback is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	awayTimeout := cfg.AwayTimeout
	if awayTimeout <= 0 {
		awayTimeout = DefaultAwayTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Driver{
		client:      client,
		model:       model,
		speak:       cfg.Speak,
		logger:      logger,
		events:      make(chan flow.Event, 32),
		jobs:        make(chan job, 16),
		userText:    make(chan string, 8),
		done:        make(chan struct{}),
		awayTimeout: awayTimeout,
		pending:     make(map[string]chan string),
	}
	d.generateContent = func(ctx context.Context, history []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, model, history, cfg)
	}
	d.wg.Add(1)
	go d.run()
	return d, nil
}

func (d *Driver) Events() <-chan flow.Event { return d.events }

func (d *Driver) SetAgentContext(instructions string, tools []flow.ToolSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instructions = instructions
	d.tools = tools
}

func (d *Driver) Say(ctx context.Context, text string, opts flow.SayOptions) error {
	return d.enqueue(job{kind: jobSay, text: text, opts: opts})
}

func (d *Driver) GenerateReply(ctx context.Context, instructions string, opts flow.SayOptions) error {
	return d.enqueue(job{kind: jobGenerate, text: instructions, opts: opts})
}

func (d *Driver) enqueue(j job) error {
	select {
	case d.jobs <- j:
		return nil
	case <-d.done:
		return errors.New("genai: driver closed")
	}
}

// SubmitUserText feeds one completed candidate turn into the driver.
// Used by the transports in place of a speech pipeline.
func (d *Driver) SubmitUserText(text string) {
	select {
	case d.userText <- text:
	case <-d.done:
	}
}

// ToolResult resumes the generation suspended on the tool call id.
// Unknown ids are ignored.
func (d *Driver) ToolResult(id, note string) {
	d.mu.Lock()
	ch, ok := d.pending[id]
	delete(d.pending, id)
	d.mu.Unlock()
	if ok {
		ch <- note
	}
}

func (d *Driver) Usage() webhook.Usage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.usage
}

// Close stops the worker. With drain, queued speech jobs are spoken by
// the worker before it exits so a goodbye line is not cut off.
func (d *Driver) Close(drain bool) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.drainOnClose = drain
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
	close(d.events)
	return nil
}

func (d *Driver) run() {
	defer d.wg.Done()
	defer d.drainJobs()
	away := time.NewTimer(d.awayTimeout)
	defer away.Stop()

	for {
		select {
		case <-d.done:
			return
		case j := <-d.jobs:
			switch j.kind {
			case jobSay:
				d.speakText(j.text, j.opts)
			case jobGenerate:
				d.generate(j.text, j.opts)
			}
			resetTimer(away, d.awayTimeout)
		case text := <-d.userText:
			resetTimer(away, d.awayTimeout)
			d.emit(&flow.UserStateEvent{State: flow.UserPresent})
			d.emit(&flow.UserTurnEvent{Text: text})
			d.history = append(d.history, genai.NewContentFromText(text, genai.RoleUser))
			d.generate("", flow.SayOptions{})
			resetTimer(away, d.awayTimeout)
		case <-away.C:
			d.emit(&flow.UserStateEvent{State: flow.UserAway})
			away.Reset(d.awayTimeout)
		}
	}
}

// drainJobs speaks the speech jobs still queued at shutdown. It runs on
// the worker goroutine after the loop has exited, so the chat history
// stays loop-owned.
func (d *Driver) drainJobs() {
	d.mu.Lock()
	drain := d.drainOnClose
	d.mu.Unlock()
	if !drain {
		return
	}
	for {
		select {
		case j := <-d.jobs:
			if j.kind == jobSay {
				d.speakText(j.text, j.opts)
			}
		default:
			return
		}
	}
}

// speakText delivers a fixed line and records it in the chat history so
// the model knows what was already said.
func (d *Driver) speakText(text string, opts flow.SayOptions) {
	d.speak(text)
	d.history = append(d.history, genai.NewContentFromText(text, genai.RoleModel))
	d.mu.Lock()
	d.usage.TTSCharacters += int64(len(text))
	d.mu.Unlock()
	d.emit(&flow.UtteranceEvent{Text: text, Suppressed: opts.Suppress})
}

// generate runs one model round, resolving tool calls until the model
// produces text, then speaks it.
func (d *Driver) generate(instructions string, opts flow.SayOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	d.mu.Lock()
	sys := d.instructions
	decls := toolDeclarations(d.tools)
	d.mu.Unlock()

	cfg := &genai.GenerateContentConfig{}
	if sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	if len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	if instructions != "" {
		d.history = append(d.history, genai.NewContentFromText("[system] "+instructions, genai.RoleUser))
	}

	// A generation that produces no utterance must still release the
	// silence suppression its request armed, or the silence handler
	// stays muted for the rest of the call.
	spoke := false
	defer func() {
		if !spoke && opts.Suppress {
			d.emit(&flow.UtteranceEvent{Suppressed: true})
		}
	}()

	for {
		resp, err := d.generateContent(ctx, d.history, cfg)
		if err != nil {
			d.logger.Error("generation failed", "error", err)
			return
		}
		d.recordUsage(resp)

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return
		}
		d.history = append(d.history, resp.Candidates[0].Content)

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			if text := resp.Text(); text != "" {
				d.speak(text)
				d.mu.Lock()
				d.usage.TTSCharacters += int64(len(text))
				d.mu.Unlock()
				spoke = true
				d.emit(&flow.UtteranceEvent{Text: text, Suppressed: opts.Suppress})
			}
			return
		}

		var parts []*genai.Part
		for _, call := range calls {
			note, ok := d.dispatchCall(call)
			if !ok {
				return
			}
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{"output": note}))
		}
		d.history = append(d.history, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

// dispatchCall emits the tool call and blocks until the orchestrator
// answers it. Returns ok=false when the driver is shutting down.
func (d *Driver) dispatchCall(call *genai.FunctionCall) (string, bool) {
	id := call.ID
	if id == "" {
		d.nextCallID++
		id = fmt.Sprintf("call-%d", d.nextCallID)
	}
	raw, err := json.Marshal(call.Args)
	if err != nil {
		raw = nil
	}

	ch := make(chan string, 1)
	d.mu.Lock()
	d.pending[id] = ch
	d.mu.Unlock()

	d.emit(&flow.ToolCallEvent{ID: id, Name: call.Name, Input: raw})

	select {
	case note := <-ch:
		return note, true
	case <-time.After(toolResultTimeout):
		d.logger.Warn("tool result timed out", "tool", call.Name, "id", id)
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()
		return "", true
	case <-d.done:
		return "", false
	}
}

func (d *Driver) recordUsage(resp *genai.GenerateContentResponse) {
	if resp.UsageMetadata == nil {
		return
	}
	d.mu.Lock()
	d.usage.PromptTokens += int64(resp.UsageMetadata.PromptTokenCount)
	d.usage.CompletionTokens += int64(resp.UsageMetadata.CandidatesTokenCount)
	d.mu.Unlock()
}

func (d *Driver) emit(ev flow.Event) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

func toolDeclarations(specs []flow.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		decl := &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
		}
		if len(s.Params) > 0 {
			props := make(map[string]*genai.Schema, len(s.Params))
			required := make([]string, 0, len(s.Params))
			for _, p := range s.Params {
				props[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
				required = append(required, p.Name)
			}
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

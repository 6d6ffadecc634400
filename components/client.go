package components

import (
	"context"
	"errors"
	"net/http"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// ErrNoCredential is returned when a chat call has no API key to authenticate with
var ErrNoCredential = errors.New("no api key for chat completion")

// ChatClient is the subset of the openai client used by agents
type ChatClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ ChatClient = (*openai.Client)(nil)

type credentialKey struct{}

// WithCredential returns a context carrying the API key for chat calls made under it
func WithCredential(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, credentialKey{}, apiKey)
}

// Credential returns the API key stored in ctx
func Credential(ctx context.Context) string {
	key, _ := ctx.Value(credentialKey{}).(string)
	return key
}

// ClientPool is a ChatClient that dispatches each call to an openai client bound to
// the credential found in the call context, falling back to the default key.
// Clients are created lazily, one per key.
type ClientPool struct {
	baseURL    string
	defaultKey string
	httpClient *http.Client
	mtx        sync.Mutex
	clients    map[string]*openai.Client
}

var _ ChatClient = (*ClientPool)(nil)

type ClientPoolOption func(*ClientPool)

func WithDefaultKey(apiKey string) ClientPoolOption {
	return func(p *ClientPool) {
		p.defaultKey = apiKey
	}
}

func WithHTTPClient(clt *http.Client) ClientPoolOption {
	return func(p *ClientPool) {
		p.httpClient = clt
	}
}

// NewClientPool returns a ClientPool for an OpenAI-compatible endpoint
func NewClientPool(baseURL string, opts ...ClientPoolOption) *ClientPool {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ret := &ClientPool{
		baseURL: baseURL,
		clients: make(map[string]*openai.Client),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Client returns the openai client bound to apiKey
func (p *ClientPool) Client(apiKey string) *openai.Client {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if clt, ok := p.clients[apiKey]; ok {
		return clt
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = p.baseURL
	if p.httpClient != nil {
		cfg.HTTPClient = p.httpClient
	}
	clt := openai.NewClientWithConfig(cfg)
	p.clients[apiKey] = clt
	return clt
}

func (p *ClientPool) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	key := Credential(ctx)
	if key == "" {
		key = p.defaultKey
	}
	if key == "" {
		return openai.ChatCompletionResponse{}, ErrNoCredential
	}
	return p.Client(key).CreateChatCompletion(ctx, req)
}

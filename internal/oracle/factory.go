package oracle

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/webclient"
)

const (
	ClassifierKeyword = "keyword"
	ClassifierHTTP    = "http"

	IdentityRandom = "random"
	IdentityStatic = "static"
	IdentityWeb    = "web"

	// None disables an oracle; the engine then always uses its fallback.
	None = "none"
)

// Config selects and configures the oracle implementations.
type Config struct {
	Classifier string `mapstructure:"classifier"`
	Identity   string `mapstructure:"identity"`

	// KeywordModelPath points to a YAML lexicon; empty uses the built-in one.
	KeywordModelPath   string `mapstructure:"keyword_model_path"`
	ClassifierEndpoint string `mapstructure:"classifier_endpoint"`

	Random RandomIdentityConfig `mapstructure:"random"`
	Static StaticIdentityConfig `mapstructure:"static"`
	Web    WebIdentityConfig    `mapstructure:"web"`
}

func DefaultConfig() Config {
	return Config{
		Classifier: ClassifierKeyword,
		Identity:   IdentityRandom,
		Random:     RandomIdentityConfig{MaxMatches: 10},
		Web:        WebIdentityConfig{ProfileURL: "https://www.instagram.com/{handle}/"},
	}
}

// Deps are the shared collaborators handed to oracle constructors.
type Deps struct {
	Client webclient.WebClient
	Logger logging.Logger
}

type ClassifierConstructor func(cfg Config, deps Deps) (ClassifierOracle, error)
type IdentityConstructor func(cfg Config, deps Deps) (IdentityOracle, error)

var (
	mu          sync.RWMutex
	classifiers = map[string]ClassifierConstructor{}
	identities  = map[string]IdentityConstructor{}
)

func init() {
	RegisterClassifier(ClassifierKeyword, func(cfg Config, _ Deps) (ClassifierOracle, error) {
		model, err := LoadKeywordModel(cfg.KeywordModelPath)
		if err != nil {
			return nil, err
		}
		return NewKeywordClassifier(model)
	})
	RegisterClassifier(ClassifierHTTP, func(cfg Config, deps Deps) (ClassifierOracle, error) {
		return NewHTTPClassifier(cfg.ClassifierEndpoint, deps.Client, deps.Logger)
	})

	RegisterIdentity(IdentityRandom, func(cfg Config, _ Deps) (IdentityOracle, error) {
		return NewRandomIdentityOracle(cfg.Random), nil
	})
	RegisterIdentity(IdentityStatic, func(cfg Config, _ Deps) (IdentityOracle, error) {
		return NewStaticIdentityOracle(cfg.Static), nil
	})
	RegisterIdentity(IdentityWeb, func(cfg Config, deps Deps) (IdentityOracle, error) {
		return NewWebIdentityOracle(cfg.Web, deps.Client, deps.Logger)
	})
}

// RegisterClassifier registers a named classifier constructor. Registering
// the same name again overwrites it.
func RegisterClassifier(name string, ctor ClassifierConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	classifiers[strings.ToLower(name)] = ctor
}

// RegisterIdentity registers a named identity oracle constructor.
func RegisterIdentity(name string, ctor IdentityConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	identities[strings.ToLower(name)] = ctor
}

// NewClassifier builds the configured classifier. "none" yields nil.
func NewClassifier(cfg Config, deps Deps) (ClassifierOracle, error) {
	name := normalizeName(cfg.Classifier, ClassifierKeyword)
	if name == None {
		return nil, nil
	}
	mu.RLock()
	ctor, ok := classifiers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("classifier %q not registered: available=%v", name, ListClassifiers())
	}
	c, err := ctor(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("construct classifier %q: %w", name, err)
	}
	return c, nil
}

// NewIdentity builds the configured identity oracle. "none" yields nil.
func NewIdentity(cfg Config, deps Deps) (IdentityOracle, error) {
	name := normalizeName(cfg.Identity, IdentityRandom)
	if name == None {
		return nil, nil
	}
	mu.RLock()
	ctor, ok := identities[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("identity oracle %q not registered: available=%v", name, ListIdentities())
	}
	o, err := ctor(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("construct identity oracle %q: %w", name, err)
	}
	return o, nil
}

func ListClassifiers() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedKeys(classifiers)
}

func ListIdentities() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedKeys(identities)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeName(name, def string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return def
	}
	return name
}

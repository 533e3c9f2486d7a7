package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"gopkg.in/yaml.v3"
)

// LogConfig configures the slog handler: level, encoding, and destination.
type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

// Config is the complete runtime configuration for fund-quoter: the chain
// client that tracks one fund's on-chain state, and the HTTP/WebSocket
// server that exposes quotes for it.
type Config struct {
	RPCURL            string
	Commitment        rpc.CommitmentType
	PollInterval      time.Duration
	RPCMaxRetries     int
	RPCRetryBaseDelay time.Duration
	RPCRetryMaxDelay  time.Duration

	FundProgramID    solana.PublicKey
	FundStateAddress solana.PublicKey
	TokenListAddress solana.PublicKey
	CurveDataAddress solana.PublicKey
	SwapFeeAddress   solana.PublicKey

	ListenAddr     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string

	Log LogConfig
}

var (
	defaultFundProgramID    = solana.MustPublicKeyFromBase58("2KehYt3KsEQR53jYcxjbQp2d2kCp4AkuQW68atufRwSr")
	defaultTokenListAddress = solana.MustPublicKeyFromBase58("3SnUughtueoVrhevXTLMf586qvKNNXggNsc7NgoMUU1t")
	defaultCurveDataAddress = solana.MustPublicKeyFromBase58("4QMjSHuM3iS7Fdfi8kZJfHRKoEJSDHEtEwqbChsTcUVK")
	defaultPDAAddress       = solana.MustPublicKeyFromBase58("BLBYiq48WcLQ5SxiftyKmPtmsZPUBEnDEjqEnKGAR4zx")
	defaultSwapFeeAddress   = solana.MustPublicKeyFromBase58("AWfpfzA6FYbqx4JLz75PDgsjH7jtBnnmJ6MXW5zNY2Ei")
)

// LoadConfig reads fund-quoter's configuration from the environment, falling
// back to a phase-specific YAML file (CONFIG_FILE or config/config-<phase>.yaml)
// for anything not set directly, the same layering every service in this
// repo uses.
func LoadConfig() (Config, error) {
	if err := ensureRuntimeConfigLoaded(); err != nil {
		return Config{}, err
	}

	commitment, err := envCommitment("SOLANA_COMMITMENT", rpc.CommitmentConfirmed)
	if err != nil {
		return Config{}, err
	}

	pollInterval, err := envDuration("QUOTER_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	rpcMaxRetries, err := envInt("QUOTER_RPC_MAX_RETRIES", 6)
	if err != nil {
		return Config{}, err
	}
	rpcRetryBaseDelay, err := envDuration("QUOTER_RPC_RETRY_BASE_DELAY", time.Second)
	if err != nil {
		return Config{}, err
	}
	rpcRetryMaxDelay, err := envDuration("QUOTER_RPC_RETRY_MAX_DELAY", 20*time.Second)
	if err != nil {
		return Config{}, err
	}
	if rpcRetryMaxDelay < rpcRetryBaseDelay {
		return Config{}, fmt.Errorf("invalid QUOTER_RPC_RETRY_MAX_DELAY: must be >= QUOTER_RPC_RETRY_BASE_DELAY")
	}

	fundProgramID, err := envPubkey("FUND_PROGRAM_ID", defaultFundProgramID)
	if err != nil {
		return Config{}, err
	}
	fundStateAddress, err := envPubkey("FUND_STATE_ADDRESS", defaultPDAAddress)
	if err != nil {
		return Config{}, err
	}
	tokenListAddress, err := envPubkey("TOKEN_LIST_ADDRESS", defaultTokenListAddress)
	if err != nil {
		return Config{}, err
	}
	curveDataAddress, err := envPubkey("CURVE_DATA_ADDRESS", defaultCurveDataAddress)
	if err != nil {
		return Config{}, err
	}
	swapFeeAddress, err := envPubkey("SWAP_FEE_ADDRESS", defaultSwapFeeAddress)
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := envDuration("QUOTER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := envDuration("QUOTER_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	idleTimeout, err := envDuration("QUOTER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return Config{}, err
	}
	allowedOrigins := parseCSVEnv(envOrDefault("QUOTER_ALLOWED_ORIGINS", "*"), []string{"*"})

	return Config{
		RPCURL:            envOrDefault("SOLANA_RPC_URL", "http://127.0.0.1:8899"),
		Commitment:        commitment,
		PollInterval:      pollInterval,
		RPCMaxRetries:     rpcMaxRetries,
		RPCRetryBaseDelay: rpcRetryBaseDelay,
		RPCRetryMaxDelay:  rpcRetryMaxDelay,

		FundProgramID:    fundProgramID,
		FundStateAddress: fundStateAddress,
		TokenListAddress: tokenListAddress,
		CurveDataAddress: curveDataAddress,
		SwapFeeAddress:   swapFeeAddress,

		ListenAddr:     envOrDefault("QUOTER_LISTEN_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		AllowedOrigins: allowedOrigins,

		Log: buildLogConfig("QUOTER", "fund-quoter"),
	}, nil
}

type ConfigSource struct {
	Phase  string
	Path   string
	Loaded bool
}

func CurrentConfigSource() (ConfigSource, error) {
	if err := ensureRuntimeConfigLoaded(); err != nil {
		return ConfigSource{}, err
	}
	return ConfigSource{
		Phase:  runtimeConfigPhase,
		Path:   runtimeConfigPath,
		Loaded: runtimeConfigLoaded,
	}, nil
}

func buildLogConfig(prefix string, serviceName string) LogConfig {
	level := envOrDefault(prefix+"_LOG_LEVEL", envOrDefault("LOG_LEVEL", "info"))
	format := envOrDefault(prefix+"_LOG_FORMAT", envOrDefault("LOG_FORMAT", "text"))
	output := envOrDefault(prefix+"_LOG_OUTPUT", envOrDefault("LOG_OUTPUT", "console"))
	filePath := envOrDefault(prefix+"_LOG_FILE", envOrDefault("LOG_FILE", filepath.Join(".docker", serviceName, serviceName+".log")))

	return LogConfig{
		Level:    level,
		Format:   format,
		Output:   output,
		FilePath: filePath,
	}
}

func envPubkey(key string, fallback solana.PublicKey) (solana.PublicKey, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	pk, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return pk, nil
}

func envCommitment(key string, fallback rpc.CommitmentType) (rpc.CommitmentType, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	switch strings.ToLower(raw) {
	case string(rpc.CommitmentProcessed):
		return rpc.CommitmentProcessed, nil
	case string(rpc.CommitmentConfirmed):
		return rpc.CommitmentConfirmed, nil
	case string(rpc.CommitmentFinalized):
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("invalid %s: %q (expected processed|confirmed|finalized)", key, raw)
	}
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be > 0", key)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(valueForKey(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be > 0", key)
	}
	return v, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(valueForKey(key)); value != "" {
		return value
	}
	return fallback
}

func parseCSVEnv(raw string, fallback []string) []string {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

var (
	runtimeConfigOnce   sync.Once
	runtimeConfigErr    error
	runtimeConfigValues map[string]string
	runtimeConfigLoaded bool
	runtimeConfigPath   string
	runtimeConfigPhase  string
)

func ensureRuntimeConfigLoaded() error {
	runtimeConfigOnce.Do(func() {
		runtimeConfigValues = make(map[string]string)

		phase := strings.TrimSpace(os.Getenv("CONFIG_PHASE"))
		if phase == "" {
			phase = "local"
		}
		runtimeConfigPhase = phase

		configPath := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
		explicitPath := configPath != ""
		if configPath == "" {
			configPath = filepath.Join("config", "config-"+phase+".yaml")
		}

		body, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && !explicitPath {
				return
			}
			runtimeConfigErr = fmt.Errorf("read config file %q: %w", configPath, err)
			return
		}

		raw := make(map[string]any)
		if err := yaml.Unmarshal(body, &raw); err != nil {
			runtimeConfigErr = fmt.Errorf("parse config file %q: %w", configPath, err)
			return
		}

		flattened, err := flattenConfig(raw)
		if err != nil {
			runtimeConfigErr = fmt.Errorf("flatten config file %q: %w", configPath, err)
			return
		}

		runtimeConfigValues = flattened
		runtimeConfigLoaded = true
		if absPath, err := filepath.Abs(configPath); err == nil {
			runtimeConfigPath = absPath
		} else {
			runtimeConfigPath = configPath
		}
	})
	return runtimeConfigErr
}

func flattenConfig(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string)
	for key, value := range raw {
		segment := normalizeKeySegment(key)
		if segment == "" {
			continue
		}
		if err := flattenConfigValue(segment, value, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func flattenConfigValue(prefix string, value any, out map[string]string) error {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			segment := normalizeKeySegment(key)
			if segment == "" {
				continue
			}
			if err := flattenConfigValue(prefix+"_"+segment, child, out); err != nil {
				return err
			}
		}
		return nil
	case map[any]any:
		for keyAny, child := range typed {
			keyText, ok := keyAny.(string)
			if !ok {
				return fmt.Errorf("unsupported map key type %T under %q", keyAny, prefix)
			}
			segment := normalizeKeySegment(keyText)
			if segment == "" {
				continue
			}
			if err := flattenConfigValue(prefix+"_"+segment, child, out); err != nil {
				return err
			}
		}
		return nil
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			switch scalar := item.(type) {
			case string:
				if strings.TrimSpace(scalar) == "" {
					continue
				}
				parts = append(parts, strings.TrimSpace(scalar))
			case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
				parts = append(parts, fmt.Sprint(scalar))
			default:
				return fmt.Errorf("unsupported list item type %T under %q", item, prefix)
			}
		}
		out[prefix] = strings.Join(parts, ",")
		return nil
	case nil:
		return nil
	default:
		out[prefix] = fmt.Sprint(typed)
		return nil
	}
}

func normalizeKeySegment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	lastUnderscore := false

	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

func valueForKey(key string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	if err := ensureRuntimeConfigLoaded(); err != nil {
		return ""
	}

	if value := strings.TrimSpace(runtimeConfigValues[key]); value != "" {
		return value
	}
	return ""
}

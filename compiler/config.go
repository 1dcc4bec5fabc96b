package compiler

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config is read from an oopsc.toml file. Keys missing from the file keep
// their defaults.
type Config struct {
	Memory MemoryConfig `toml:"memory"`
	Entry  EntryConfig  `toml:"entry"`
	Compat CompatConfig `toml:"compat"`
	Output OutputConfig `toml:"output"`

	// Logger receives the phase events. The zero value discards them.
	Logger zerolog.Logger `toml:"-"`
}

// MemoryConfig sizes the stack and heap areas of the generated program, in
// words.
type MemoryConfig struct {
	StackSize int `toml:"stack_size"`
	HeapSize  int `toml:"heap_size"`
}

// EntryConfig names the class that is instantiated at startup and the method
// called on it.
type EntryConfig struct {
	Class  string `toml:"class"`
	Method string `toml:"method"`
}

type CompatConfig struct {
	// FallthroughLogic reproduces the historical lowering of AND, OR and NOT.
	FallthroughLogic bool `toml:"fallthrough_logic"`
}

type OutputConfig struct {
	Comments bool `toml:"comments"`
}

func DefaultConfig() Config {
	return Config{
		Memory: MemoryConfig{StackSize: 100, HeapSize: 100},
		Entry:  EntryConfig{Class: "Main", Method: "main"},
		Output: OutputConfig{Comments: true},
		Logger: zerolog.Nop(),
	}
}

// LoadConfig reads path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return config, nil
}

func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	meta, err := toml.Decode(string(data), &config)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return Config{}, fmt.Errorf("unknown key %s", undecoded[0])
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (config Config) Validate() error {
	if config.Memory.StackSize <= 0 {
		return errors.New("stack_size must be greater than 0")
	}
	if config.Memory.HeapSize <= 0 {
		return errors.New("heap_size must be greater than 0")
	}
	if config.Entry.Class == "" || config.Entry.Method == "" {
		return errors.New("entry class and method must be set")
	}
	return nil
}

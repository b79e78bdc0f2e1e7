package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StatusRule selects how a patient's financial status is derived from their ledger.
type StatusRule string

const (
	// StatusRuleOutstanding marks a patient inadimplente while any unpaid charge exists.
	StatusRuleOutstanding StatusRule = "outstanding"
	// StatusRuleBalance marks a patient adimplente while payments cover charges.
	StatusRuleBalance StatusRule = "balance"
)

// FinanceConfig carries the clinic-finance rule set and catalogs.
type FinanceConfig struct {
	StatusRule     StatusRule `mapstructure:"statusRule"`
	InputTypes     []string   `mapstructure:"inputTypes"`
	OutputTypes    []string   `mapstructure:"outputTypes"`
	PaymentMethods []string   `mapstructure:"paymentMethods"`
}

func DefaultFinanceConfig() FinanceConfig {
	return FinanceConfig{
		StatusRule: StatusRuleOutstanding,
		InputTypes: []string{
			"Pagamento Tratamento",
			"Crédito/Adiantamento Paciente",
			"Convênio",
			"Outros",
		},
		OutputTypes: []string{
			"Pagamento Funcionário",
			"Aluguel",
			"Material",
			"Laboratório",
			"Impostos",
			"Outros",
		},
		PaymentMethods: []string{
			"Dinheiro",
			"Pix",
			"Cartão de Crédito",
			"Cartão de Débito",
			"Transferência",
			"Boleto",
		},
	}
}

// FinanceConfigHolder keeps the current finance rules and hot-reloads them on file change.
type FinanceConfigHolder struct {
	current atomic.Value // holds FinanceConfig
}

func NewFinanceConfigHolder() (*FinanceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("finance")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/odontocare/config")
	v.AddConfigPath("/etc/odontocare")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ODONTOCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultFinanceConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("finance.statusRule", string(defaults.StatusRule))
		v.SetDefault("finance.inputTypes", defaults.InputTypes)
		v.SetDefault("finance.outputTypes", defaults.OutputTypes)
		v.SetDefault("finance.paymentMethods", defaults.PaymentMethods)
	}

	var cfg FinanceConfig
	if err := v.UnmarshalKey("finance", &cfg); err != nil {
		return nil, err
	}
	if err := validateFinanceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &FinanceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FinanceConfig
		if err := v.UnmarshalKey("finance", &updated); err != nil {
			log.Printf("[finance-config] reload failed: %v", err)
			return
		}
		if err := validateFinanceConfig(updated); err != nil {
			log.Printf("[finance-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[finance-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticFinanceConfigHolder wraps a fixed rule set, used by tests.
func NewStaticFinanceConfigHolder(cfg FinanceConfig) *FinanceConfigHolder {
	holder := &FinanceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *FinanceConfigHolder) Get() FinanceConfig {
	return h.current.Load().(FinanceConfig)
}

func validateFinanceConfig(cfg FinanceConfig) error {
	switch cfg.StatusRule {
	case StatusRuleOutstanding, StatusRuleBalance:
	default:
		return errors.New("finance.statusRule must be outstanding or balance")
	}
	if len(cfg.InputTypes) == 0 {
		return errors.New("finance.inputTypes cannot be empty")
	}
	if len(cfg.OutputTypes) == 0 {
		return errors.New("finance.outputTypes cannot be empty")
	}
	if len(cfg.PaymentMethods) == 0 {
		return errors.New("finance.paymentMethods cannot be empty")
	}
	return nil
}

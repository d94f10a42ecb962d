// Package cmd implements the fragdec CLI commands.
package cmd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	log     = logrus.NewEntry(logrus.StandardLogger())
)

var rootCmd = &cobra.Command{
	Use:     "fragdec",
	Short:   "Reconstruct an image from LoRaWAN Fragmented Data Block Transport fragments",
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return nil
		}
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrap(err, "fragdec: reading config file")
		}
		return nil
	},
}

// Execute runs the root command. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (optional; flags and env override it)")

	// The compile-time configuration envelope of spec.md §6
	// (M_MAX/MIN_FRAG_SIZE/MAX_FRAG_SIZE/MAX_REDUNDANCY_PERCENT) sizes a
	// microcontroller build's static bitmaps; on this process-based CLI
	// build it is instead a runtime ceiling that --m/--frag-size/--t are
	// validated against, overridable via flag, env var or --config
	// without recompiling.
	rootCmd.PersistentFlags().Int("m-max", 4096, "upper bound on the number of uncoded fragments (M_MAX)")
	rootCmd.PersistentFlags().Int("min-frag-size", 1, "lower bound on fragment body size in bytes (MIN_FRAG_SIZE)")
	rootCmd.PersistentFlags().Int("max-frag-size", 256, "upper bound on fragment body size in bytes (MAX_FRAG_SIZE)")
	rootCmd.PersistentFlags().Int("max-redundancy-percent", 110, "upper bound on coded-fragment redundancy as a percentage of M_MAX (MAX_REDUNDANCY_PERCENT)")

	viper.BindPFlag("m_max", rootCmd.PersistentFlags().Lookup("m-max"))
	viper.BindPFlag("min_frag_size", rootCmd.PersistentFlags().Lookup("min-frag-size"))
	viper.BindPFlag("max_frag_size", rootCmd.PersistentFlags().Lookup("max-frag-size"))
	viper.BindPFlag("max_redundancy_percent", rootCmd.PersistentFlags().Lookup("max-redundancy-percent"))

	viper.SetEnvPrefix("fragdec")
	viper.AutomaticEnv()

	if lvl, err := logrus.ParseLevel(viper.GetString("log_level")); err == nil {
		logrus.SetLevel(lvl)
	}
}

// envelope holds the resolved compile-time configuration envelope.
type envelope struct {
	mMax                 int
	minFragSize          int
	maxFragSize          int
	maxRedundancyPercent int
}

// tMax is T_MAX per spec.md §6: floor(M_MAX * redundancy / 100).
func (e envelope) tMax() int {
	return (e.mMax * e.maxRedundancyPercent) / 100
}

func currentEnvelope() envelope {
	return envelope{
		mMax:                 viper.GetInt("m_max"),
		minFragSize:          viper.GetInt("min_frag_size"),
		maxFragSize:          viper.GetInt("max_frag_size"),
		maxRedundancyPercent: viper.GetInt("max_redundancy_percent"),
	}
}

// validate reports an error if m/fragSize/t fall outside the envelope.
func (e envelope) validate(m, fragSize, t int) error {
	if m > e.mMax {
		return errors.Errorf("fragdec: m=%d exceeds configured m-max=%d", m, e.mMax)
	}
	if fragSize < e.minFragSize || fragSize > e.maxFragSize {
		return errors.Errorf("fragdec: frag-size=%d outside configured range [%d, %d]", fragSize, e.minFragSize, e.maxFragSize)
	}
	if tMax := e.tMax(); t > tMax {
		return errors.Errorf("fragdec: t=%d exceeds configured t-max=%d (m-max=%d * max-redundancy-percent=%d%%)", t, tMax, e.mMax, e.maxRedundancyPercent)
	}
	return nil
}

package cmd

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fragdec "github.com/brocaar/lorawan-fragdec"
	"github.com/brocaar/lorawan-fragdec/fragstore"
)

// fragmentRecord is one line of a capture file: a frame counter and the
// hex-encoded fragment body, in delivery order.
type fragmentRecord struct {
	FrameCounter int    `json:"frame_counter"`
	Payload      string `json:"payload"`
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Feed a captured fragment stream into the decoder and report the outcome",
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().String("capture", "", "path to a JSON-lines capture file (required)")
	replayCmd.Flags().Int("m", 0, "number of uncoded fragments the image was split into (required)")
	replayCmd.Flags().Int("frag-size", 0, "fragment body size in bytes (required)")
	replayCmd.Flags().Int("t", 0, "maximum number of lost fragments to tolerate")
	replayCmd.Flags().String("store", "", "file path for the reassembled image (defaults to an in-memory store)")

	viper.BindPFlag("capture", replayCmd.Flags().Lookup("capture"))
	viper.BindPFlag("m", replayCmd.Flags().Lookup("m"))
	viper.BindPFlag("frag_size", replayCmd.Flags().Lookup("frag-size"))
	viper.BindPFlag("t", replayCmd.Flags().Lookup("t"))
	viper.BindPFlag("store", replayCmd.Flags().Lookup("store"))

	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	capturePath := viper.GetString("capture")
	m := viper.GetInt("m")
	fragSize := viper.GetInt("frag_size")
	t := viper.GetInt("t")
	storePath := viper.GetString("store")

	if capturePath == "" || m == 0 || fragSize == 0 {
		return errors.New("fragdec: --capture, --m and --frag-size are required")
	}

	if err := currentEnvelope().validate(m, fragSize, t); err != nil {
		return err
	}

	store, closeStore, err := openStore(storePath, m*fragSize)
	if err != nil {
		return err
	}
	defer closeStore()

	d, err := fragdec.New(fragdec.Config{
		M:        m,
		FragSize: fragSize,
		T:        t,
		Store:    store,
		Logger:   log,
	})
	if err != nil {
		return errors.Wrap(err, "fragdec: initializing decoder")
	}

	f, err := os.Open(capturePath)
	if err != nil {
		return errors.Wrap(err, "fragdec: opening capture file")
	}
	defer f.Close()

	outcome, frames, err := replay(d, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d fragments: status=%s outcome=%s\n", frames, d.Status(), outcome)
	return nil
}

// replay feeds every record in r into d, in order, and returns the final
// outcome. It stops early once the decoder reports Completed.
func replay(d *fragdec.Decoder, r io.Reader) (fragdec.Outcome, int, error) {
	scanner := bufio.NewScanner(r)
	var outcome fragdec.Outcome
	frames := 0

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec fragmentRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return outcome, frames, errors.Wrap(err, "fragdec: decoding capture line")
		}

		payload, err := hex.DecodeString(rec.Payload)
		if err != nil {
			return outcome, frames, errors.Wrapf(err, "fragdec: decoding hex payload for frame %d", rec.FrameCounter)
		}

		outcome, err = d.Feed(rec.FrameCounter, payload)
		if err != nil {
			return outcome, frames, errors.Wrapf(err, "fragdec: feeding frame %d", rec.FrameCounter)
		}
		frames++

		if outcome == fragdec.Completed {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return outcome, frames, errors.Wrap(err, "fragdec: reading capture file")
	}

	return outcome, frames, nil
}

func openStore(path string, size int) (fragstore.Store, func(), error) {
	if path == "" {
		return fragstore.NewMemStore(size), func() {}, nil
	}

	store, err := fragstore.OpenFileStore(path, int64(size))
	if err != nil {
		return nil, nil, errors.Wrap(err, "fragdec: opening file store")
	}
	return store, func() { store.Close() }, nil
}

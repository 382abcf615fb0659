package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/hexmerge/codec"
	"github.com/alphabill-org/hexmerge/pipeline"
)

const (
	flagNameOutput     = "output"
	flagNameBinStart   = "bin-start"
	flagNameFletcher16 = "fletcher16"
)

func newRunCmd(config *baseConfiguration) *cobra.Command {
	return &cobra.Command{
		Use:   "run COMMAND [ARGS]...",
		Short: "Run list of commands against single memory image",
		Long: `Run list of commands against single memory image. Commands are executed in the
given order, ie later imports may overwrite data of previous imports and an export
only contains the data merged up to that point. Addresses and values are hexadecimal,
the "0x" prefix is optional.

Commands:
  import FILE [ADDR]       import file, binary files (*.bin) require start address
  export FILE              export image to file, format is selected by extension
  print                    print image to console
  checksum [ALGORITHM]     print checksum of every data block, crc32 (default) or fletcher16
  fill START STOP VALUE    fill range with fixed value
  fillrand START STOP      fill range with random values
  clip START STOP          delete data outside of range
  cut START STOP           delete data inside of range
  copy START STOP TO       copy data within image, keep old data
  move START STOP TO       move data within image, unset old data

Supported formats: Motorola S19 (*.s19, *.srec, *.mot), Intel HEX (*.hex, *.ihx),
ASCII table (*.txt) and binary (*.bin).`,
		Example: "hexmerge run import boot.s19 import app.hex fill 0x8000 0x80FF 0xFF export merged.s19",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := pipeline.Parse(args)
			if err != nil {
				return err
			}
			return pipeline.Run(cmd.Context(), config.pipelineConfig(cmd), steps)
		},
	}
}

func newConvertCmd(config *baseConfiguration) *cobra.Command {
	var binStart string
	var output string
	cmd := &cobra.Command{
		Use:     "convert INPUT... --output FILE",
		Short:   "Merge input files and export the result",
		Example: "hexmerge convert boot.s19 app.bin --bin-start 0x8000 --output merged.hex",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, config, args, binStart, "export", output)
		},
	}
	cmd.Flags().StringVarP(&output, flagNameOutput, "o", "", "output file name, format is selected by extension")
	cmd.Flags().StringVar(&binStart, flagNameBinStart, "", "start address (hex) of binary input files")
	if err := cmd.MarkFlagRequired(flagNameOutput); err != nil {
		panic(err)
	}
	return cmd
}

func newPrintCmd(config *baseConfiguration) *cobra.Command {
	var binStart string
	cmd := &cobra.Command{
		Use:   "print INPUT...",
		Short: "Merge input files and print the result as address/value table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, config, args, binStart, "print")
		},
	}
	cmd.Flags().StringVar(&binStart, flagNameBinStart, "", "start address (hex) of binary input files")
	return cmd
}

func newChecksumCmd(config *baseConfiguration) *cobra.Command {
	var binStart string
	var fletcher bool
	cmd := &cobra.Command{
		Use:   "checksum INPUT...",
		Short: "Merge input files and print checksum of every data block",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg := pipeline.CRC32
			if fletcher {
				alg = pipeline.Fletcher16
			}
			return runSteps(cmd, config, args, binStart, "checksum", string(alg))
		},
	}
	cmd.Flags().StringVar(&binStart, flagNameBinStart, "", "start address (hex) of binary input files")
	cmd.Flags().BoolVar(&fletcher, flagNameFletcher16, false, "use Fletcher-16 instead of CRC32")
	return cmd
}

// importArgs returns "import" command arguments for input files.
func importArgs(files []string, binStart string) ([]string, error) {
	args := make([]string, 0, 3*len(files))
	for _, f := range files {
		args = append(args, "import", f)
		if format, err := codec.FormatFromPath(f); err == nil && format == codec.Binary {
			if binStart == "" {
				return nil, fmt.Errorf("binary input %q requires --%s flag", f, flagNameBinStart)
			}
			args = append(args, binStart)
		}
	}
	return args, nil
}

func runSteps(cmd *cobra.Command, config *baseConfiguration, inputs []string, binStart string, tail ...string) error {
	args, err := importArgs(inputs, binStart)
	if err != nil {
		return err
	}
	steps, err := pipeline.Parse(append(args, tail...))
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return pipeline.Run(cmd.Context(), config.pipelineConfig(cmd), steps)
}

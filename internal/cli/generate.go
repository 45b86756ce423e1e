package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pbxforge/pbxforge/pkg/manifest"
	"github.com/pbxforge/pbxforge/pkg/pbx"
	"github.com/pbxforge/pbxforge/pkg/plist"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output string // output directory (defaults to the manifest's directory)
	stdout bool   // write the archive to stdout instead of a file
}

// newGenerateCmd creates the generate command for building project archives.
//
// The archive is written to <Name>.xcodeproj/project.pbxproj inside the
// output directory, where Name is the project name declared in the manifest.
func newGenerateCmd() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [manifest]",
		Short: "Generate a project archive from a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: alongside the manifest)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write the archive to stdout")

	return cmd
}

// runGenerate loads the manifest, builds the archive, and writes it out.
func runGenerate(ctx context.Context, manifestPath string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	logger.Infof("Loading %s", manifestPath)
	p, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded project %s: %d targets", p.Name, len(p.Targets))

	doc, err := pbx.Generate(p)
	if err != nil {
		return err
	}
	records := len(doc["objects"].(plist.Dict))
	logger.Debugf("Serialized %d records", records)

	data, err := plist.Marshal(doc)
	if err != nil {
		return err
	}

	if opts.stdout {
		_, err := os.Stdout.Write(data)
		return err
	}

	path := archivePath(opts.output, manifestPath, p.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Generated %s", p.Name))
	printSuccess("Wrote project archive")
	printFile(path)
	printStats(len(p.Targets), records)
	return nil
}

// archivePath builds the output file path: the project bundle directory
// named after the project, containing the archive file.
func archivePath(output, manifestPath, name string) string {
	dir := output
	if dir == "" {
		dir = filepath.Dir(manifestPath)
	}
	return filepath.Join(dir, name+".xcodeproj", "project.pbxproj")
}

// writeAtomic writes data to path through a uniquely named temporary file in
// the same directory, then renames it into place. A concurrent reader never
// observes a partially written archive.
func writeAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pbxforge/pbxforge/pkg/manifest"
	"github.com/pbxforge/pbxforge/pkg/pbx"
	"github.com/pbxforge/pbxforge/pkg/plist"
)

// newCheckCmd creates the check command for validating manifests.
// It runs the full load-and-serialize pipeline but writes nothing.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [manifest]",
		Short: "Validate a manifest without writing output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0])
		},
	}
}

// runCheck loads the manifest and generates the archive in memory, reporting
// what a generate run would produce.
func runCheck(ctx context.Context, manifestPath string) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Checking %s", manifestPath)

	p, err := manifest.Load(manifestPath)
	if err != nil {
		printError("Manifest is invalid")
		return err
	}

	doc, err := pbx.Generate(p)
	if err != nil {
		printError("Archive generation failed")
		return err
	}

	printSuccess("Manifest is valid")
	printKeyValue("project", p.Name)
	printKeyValue("variant", p.DefaultVariant)
	if len(p.Targets) == 0 {
		printWarning("manifest declares no targets")
	}
	for _, t := range p.Targets {
		kind := "native"
		if t.IsAggregate() {
			kind = "aggregate"
		}
		printInfo("%s (%s)", t.Name, kind)
	}
	printStats(len(p.Targets), len(doc["objects"].(plist.Dict)))
	return nil
}

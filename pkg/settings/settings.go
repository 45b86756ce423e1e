// Package settings models build settings as a fixed record of named fields
// and implements the layered base + overlay merge used when emitting build
// configurations.
//
// Every field is either a single string or an ordered list of strings, and
// may be unset. Unset fields are omitted from the projected value tree, never
// emitted as empty. A fixed subset of the list-valued fields is re-split on
// whitespace by the consuming build system; values in those fields are
// defensively normalized (see [Normalize]) so a single logical token
// containing a space survives the re-split.
package settings

import (
	"github.com/pbxforge/pbxforge/pkg/plist"
)

// Settings is the build-settings record. The field vocabulary is fixed and
// enumerated explicitly; there is no open-ended key space. The zero value is
// a record with every field unset.
type Settings struct {
	// Single-value settings.
	ProductName             string `toml:"PRODUCT_NAME,omitempty"`
	ProductBundleIdentifier string `toml:"PRODUCT_BUNDLE_IDENTIFIER,omitempty"`
	ProductModuleName       string `toml:"PRODUCT_MODULE_NAME,omitempty"`
	SDKRoot                 string `toml:"SDKROOT,omitempty"`
	InfoPlistFile           string `toml:"INFOPLIST_FILE,omitempty"`
	SwiftVersion            string `toml:"SWIFT_VERSION,omitempty"`
	MacOSDeploymentTarget   string `toml:"MACOSX_DEPLOYMENT_TARGET,omitempty"`
	IPhoneOSDeploymentTarget string `toml:"IPHONEOS_DEPLOYMENT_TARGET,omitempty"`
	OptimizationLevel       string `toml:"GCC_OPTIMIZATION_LEVEL,omitempty"`
	SwiftOptimizationLevel  string `toml:"SWIFT_OPTIMIZATION_LEVEL,omitempty"`
	DebugInformationFormat  string `toml:"DEBUG_INFORMATION_FORMAT,omitempty"`
	EnableTestability       string `toml:"ENABLE_TESTABILITY,omitempty"`
	DefinesModule           string `toml:"DEFINES_MODULE,omitempty"`
	UseHeadermap            string `toml:"USE_HEADERMAP,omitempty"`
	SkipInstall             string `toml:"SKIP_INSTALL,omitempty"`
	OnlyActiveArch          string `toml:"ONLY_ACTIVE_ARCH,omitempty"`

	// List-value settings. The space-separated subset is enumerated in
	// spaceSeparated below.
	FrameworkSearchPaths       []string `toml:"FRAMEWORK_SEARCH_PATHS,omitempty"`
	HeaderSearchPaths          []string `toml:"HEADER_SEARCH_PATHS,omitempty"`
	LibrarySearchPaths         []string `toml:"LIBRARY_SEARCH_PATHS,omitempty"`
	LDRunpathSearchPaths       []string `toml:"LD_RUNPATH_SEARCH_PATHS,omitempty"`
	PreprocessorDefinitions    []string `toml:"GCC_PREPROCESSOR_DEFINITIONS,omitempty"`
	OtherCFlags                []string `toml:"OTHER_CFLAGS,omitempty"`
	OtherLDFlags               []string `toml:"OTHER_LDFLAGS,omitempty"`
	OtherSwiftFlags            []string `toml:"OTHER_SWIFT_FLAGS,omitempty"`
	SwiftCompilationConditions []string `toml:"SWIFT_ACTIVE_COMPILATION_CONDITIONS,omitempty"`
	TargetedDeviceFamily       []string `toml:"TARGETED_DEVICE_FAMILY,omitempty"`
}

// spaceSeparated enumerates the list-valued settings whose elements the
// consuming build system re-splits on whitespace. Exactly these fields are
// subject to normalization; the set is fixed, not inferred.
var spaceSeparated = map[string]bool{
	"FRAMEWORK_SEARCH_PATHS":       true,
	"GCC_PREPROCESSOR_DEFINITIONS": true,
	"HEADER_SEARCH_PATHS":          true,
	"LD_RUNPATH_SEARCH_PATHS":      true,
	"LIBRARY_SEARCH_PATHS":         true,
	"OTHER_CFLAGS":                 true,
	"OTHER_LDFLAGS":                true,
	"OTHER_SWIFT_FLAGS":            true,
}

// SpaceSeparated reports whether the named setting is re-split on whitespace
// by the consuming build system.
func SpaceSeparated(name string) bool { return spaceSeparated[name] }

// Values projects the record to a value tree: one map entry per set field,
// single-value fields as String, list fields as Array of String. Unset
// fields are omitted. Space-separated list fields are normalized on a copy;
// the receiver is never mutated.
//
// The enumeration below is the record's field table: every declared field
// appears exactly once, so no value can be of an unsupported shape.
func (s *Settings) Values() plist.Dict {
	d := plist.Dict{}

	putString(d, "PRODUCT_NAME", s.ProductName)
	putString(d, "PRODUCT_BUNDLE_IDENTIFIER", s.ProductBundleIdentifier)
	putString(d, "PRODUCT_MODULE_NAME", s.ProductModuleName)
	putString(d, "SDKROOT", s.SDKRoot)
	putString(d, "INFOPLIST_FILE", s.InfoPlistFile)
	putString(d, "SWIFT_VERSION", s.SwiftVersion)
	putString(d, "MACOSX_DEPLOYMENT_TARGET", s.MacOSDeploymentTarget)
	putString(d, "IPHONEOS_DEPLOYMENT_TARGET", s.IPhoneOSDeploymentTarget)
	putString(d, "GCC_OPTIMIZATION_LEVEL", s.OptimizationLevel)
	putString(d, "SWIFT_OPTIMIZATION_LEVEL", s.SwiftOptimizationLevel)
	putString(d, "DEBUG_INFORMATION_FORMAT", s.DebugInformationFormat)
	putString(d, "ENABLE_TESTABILITY", s.EnableTestability)
	putString(d, "DEFINES_MODULE", s.DefinesModule)
	putString(d, "USE_HEADERMAP", s.UseHeadermap)
	putString(d, "SKIP_INSTALL", s.SkipInstall)
	putString(d, "ONLY_ACTIVE_ARCH", s.OnlyActiveArch)

	putList(d, "FRAMEWORK_SEARCH_PATHS", s.FrameworkSearchPaths)
	putList(d, "HEADER_SEARCH_PATHS", s.HeaderSearchPaths)
	putList(d, "LIBRARY_SEARCH_PATHS", s.LibrarySearchPaths)
	putList(d, "LD_RUNPATH_SEARCH_PATHS", s.LDRunpathSearchPaths)
	putList(d, "GCC_PREPROCESSOR_DEFINITIONS", s.PreprocessorDefinitions)
	putList(d, "OTHER_CFLAGS", s.OtherCFlags)
	putList(d, "OTHER_LDFLAGS", s.OtherLDFlags)
	putList(d, "OTHER_SWIFT_FLAGS", s.OtherSwiftFlags)
	putList(d, "SWIFT_ACTIVE_COMPILATION_CONDITIONS", s.SwiftCompilationConditions)
	putList(d, "TARGETED_DEVICE_FAMILY", s.TargetedDeviceFamily)

	return d
}

// putString adds a single-value field, omitting unset values.
func putString(d plist.Dict, name, v string) {
	if v == "" {
		return
	}
	d[name] = plist.String(v)
}

// putList adds a list-value field, omitting unset values and normalizing
// the space-separated subset on a copy.
func putList(d plist.Dict, name string, v []string) {
	if len(v) == 0 {
		return
	}
	if spaceSeparated[name] {
		v = NormalizeList(v)
	}
	d[name] = plist.Strings(v)
}

package dub

import (
	"github.com/vporton/dub/metadata"
)

// PackageDescription is one entry of a ProjectDescription's packages array:
// a package's identity plus the settings of whichever configuration the
// resolver chose for it.
type PackageDescription struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Path          string            `json:"path"`
	Configuration string            `json:"configuration"`
	Settings      metadata.Settings `json:"settings"`
}

// ProjectDescription is the "project description" document: rootPackage,
// the deprecated mainPackage alias, and packages in root-first traversal
// order.
type ProjectDescription struct {
	RootPackage string               `json:"rootPackage"`
	MainPackage string               `json:"mainPackage"`
	Packages    []PackageDescription `json:"packages"`
}

// DescribeProject walks the project in parents-before-children order over
// the edges configs permits, asking each reachable package for its chosen
// configuration's settings, and assembles the resulting document.
func DescribeProject(proj *Project, platform metadata.Platform, configs map[string]string) (*ProjectDescription, error) {
	desc := &ProjectDescription{
		RootPackage: proj.Root.Name(),
		MainPackage: proj.Root.Name(),
	}

	var walkErr error
	proj.Walk(nil, false, configs, func(pkg metadata.Package) bool {
		cfgName, ok := configs[pkg.Name()]
		if !ok {
			return false
		}
		lens, err := pkg.Lens(platform, cfgName)
		if err != nil {
			walkErr = err
			return true
		}
		desc.Packages = append(desc.Packages, PackageDescription{
			Name:          pkg.Name(),
			Version:       pkg.Version(),
			Path:          pkg.Path(),
			Configuration: cfgName,
			Settings:      lens.Settings,
		})
		return false
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return desc, nil
}

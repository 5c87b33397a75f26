package cmd

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/gophertribe/devtool/build"
	"github.com/spf13/cobra"
)

const (
	binary       = "dist/d6t"
	mainPackage  = "./cmd/d6t"
	buildImage   = "gophertribe/gobuild:1.25-bookworm"
	configModule = "github.com/mklimuk/d6t/config"
)

// BuildCmd builds the d6t cli. Native builds run go directly; other targets
// are built inside the build image so that cgo has a matching toolchain.
func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the d6t cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			goos, _ := flags.GetString("os")
			goarch, _ := flags.GetString("arch")
			version, _ := flags.GetString("version")
			crossOS, _ := flags.GetString("cross-os")
			crossArch, _ := flags.GetString("cross-arch")
			cgo, _ := flags.GetBool("cgo")

			if goos != runtime.GOOS || goarch != runtime.GOARCH {
				noCache, err := flags.GetBool("no-cache")
				if err != nil {
					return fmt.Errorf("could not get no-cache flag: %w", err)
				}
				args := []string{"build", "--version", version, "--cross-os", crossOS, "--cross-arch", crossArch, fmt.Sprintf("--cgo=%t", cgo)}
				return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", goos, goarch), args, build.DockerBuildOpts{
					NoCache: noCache,
					Image:   buildImage,
				})
			}
			if crossOS != "" && crossArch != "" {
				goos, goarch = crossOS, crossArch
			}
			if !cgo {
				slog.Warn("building without cgo; the libd6t adapter will be unavailable")
			}
			slog.Info("building", "binary", binary, "os", goos, "arch", goarch, "version", version)
			return build.GoBuild(binary, mainPackage, build.GoBuildOpts{
				Version:       version,
				InjectVersion: true,
				ConfigPackage: configModule,
				EnableCgo:     cgo,
				Arch:          goarch,
				OS:            goos,
			})
		},
	}
	cmd.Flags().Bool("no-cache", false, "do not use the docker cache")
	cmd.Flags().Bool("cgo", true, "link the libd6t loader (requires cgo)")
	cmd.Flags().String("version", "latest", "version injected into the binary")
	cmd.Flags().String("os", runtime.GOOS, "os of the build host")
	cmd.Flags().String("arch", runtime.GOARCH, "arch of the build host")
	cmd.Flags().String("cross-os", "", "os to cross-compile for")
	cmd.Flags().String("cross-arch", "", "arch to cross-compile for")
	return cmd
}

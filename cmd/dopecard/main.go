// cmd/dopecard/main.go
// Prints a 100-1000 yd dope card for one of the built-in profiles.
//
// Usage:
//
//	go run ./cmd/dopecard -temp 40 -pressure 30.1 -wind 10 -angle 270
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/padraicbc/thunderbolt/ballistics"
	"github.com/padraicbc/thunderbolt/catalog"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal("dopecard: ", err)
	}
}

func run(args []string, out io.Writer) error {
	env := catalog.StandardEnvironment()

	fs := flag.NewFlagSet("dopecard", flag.ContinueOnError)
	fs.SetOutput(out)
	profileID := fs.String("profile", catalog.DefaultProfileID, "profile id")
	fs.Float64Var(&env.Temperature, "temp", env.Temperature, "temperature (F)")
	fs.Float64Var(&env.Pressure, "pressure", env.Pressure, "station pressure (inHg)")
	fs.Float64Var(&env.WindSpeed, "wind", env.WindSpeed, "wind speed (mph)")
	fs.Float64Var(&env.WindAngle, "angle", env.WindAngle, "wind angle (degrees, 90 = from the right)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, ok := findProfile(*profileID)
	if !ok {
		return fmt.Errorf("unknown profile %q", *profileID)
	}

	rows, err := ballistics.Sweep(profile, env)
	if err != nil {
		return err
	}
	air := ballistics.Atmosphere(profile, env)

	fmt.Fprintf(out, "%s (%s) %.0f fps, %.0fgr BC %.3f %s\n",
		profile.Name, profile.Variant, profile.MuzzleVelocity, profile.BulletWeight,
		profile.BallisticCoefficient, profile.BCType)
	fmt.Fprintf(out, "%.0fF %.2f inHg, wind %.0f mph at %.0f deg, density factor %.4f\n\n",
		env.Temperature, env.Pressure, env.WindSpeed, env.WindAngle, air.DensityFactor)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "yd\telev MOA\tclicks\twind MOA\tclicks\ttof s\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%.0f\t%.2f\t%d\t%.2f\t%d\t%.3f\t\n",
			r.Range, r.ElevationMOA, r.ElevationClicks, r.WindageMOA, r.WindageClicks, r.TimeOfFlight)
	}
	return tw.Flush()
}

func findProfile(id string) (ballistics.RifleProfile, bool) {
	for _, p := range catalog.DefaultProfiles() {
		if p.ID == id {
			return p, true
		}
	}
	return ballistics.RifleProfile{}, false
}

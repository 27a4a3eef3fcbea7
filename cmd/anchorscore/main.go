// Command anchorscore prints how every anchor of a grabbable scores against a
// hand pose, and which one a grab would pick.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/ecs/entity"
	"github.com/milk9111/vrhands/ecs/system"
	"github.com/milk9111/vrhands/physics/sim"
)

type options struct {
	scene     string
	grabbable string
	hand      component.Hand
	pose      component.Transform
	second    bool
}

func main() {
	scene := flag.String("scene", "scene.yaml", "scene spec in prefabs/")
	grabbable := flag.String("grabbable", "", "name of the grabbable to score (required)")
	hand := flag.String("hand", "right", "hand to score for: left or right")
	pos := flag.String("pos", "0,0,0", "hand position x,y,z in meters")
	rot := flag.String("rot", "0,0,0", "hand rotation as Euler x,y,z in degrees")
	second := flag.Bool("second", false, "score for the second-hand slot")
	flag.Parse()

	opts, err := parseOptions(*scene, *grabbable, *hand, *pos, *rot, *second)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	if err := run(os.Stdout, opts); err != nil {
		log.Fatal(err)
	}
}

func parseOptions(scene, grabbable, hand, pos, rot string, second bool) (options, error) {
	if grabbable == "" {
		return options{}, fmt.Errorf("-grabbable is required")
	}
	h, ok := component.ParseHand(hand)
	if !ok || h == component.HandEither {
		return options{}, fmt.Errorf("-hand must be left or right, got %q", hand)
	}
	p, err := parseVec3(pos)
	if err != nil {
		return options{}, fmt.Errorf("-pos: %w", err)
	}
	e, err := parseVec3(rot)
	if err != nil {
		return options{}, fmt.Errorf("-rot: %w", err)
	}
	return options{
		scene:     scene,
		grabbable: grabbable,
		hand:      h,
		pose:      component.NewTransform(p, common.EulerToQuat(e)),
		second:    second,
	}, nil
}

func parseVec3(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

func run(out io.Writer, opts options) error {
	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, sim.NewWorld(mgl64.Vec3{}), opts.scene)
	if err != nil {
		return err
	}
	g, ok := scene.Entities[opts.grabbable]
	if !ok || !ecs.Has(w, g, component.GrabbableComponent.Kind()) {
		return fmt.Errorf("no grabbable named %q in %s", opts.grabbable, opts.scene)
	}

	rows, best := system.ScoreAnchors(w, g, opts.hand, opts.pose, opts.second)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(out, "%s has no anchors; the %s hand holds it by its origin\n", opts.grabbable, opts.hand)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tANCHOR\tDISTANCE\tORIENT\tSCORE\tSTATUS")
	for i, row := range rows {
		mark := ""
		if i == best {
			mark = "*"
		}
		status := row.Reason
		if status == "" {
			status = "ok"
		}
		name := row.Name
		if name == "" {
			name = strconv.FormatUint(row.Ref.Anchor, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%.3f\t%s\n", mark, name, row.Distance, row.Orientation, row.Score, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if best < 0 {
		_, err := fmt.Fprintf(out, "no eligible anchor for the %s hand\n", opts.hand)
		return err
	}
	return nil
}

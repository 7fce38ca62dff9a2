package mask

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/qedus/osmpbf"

	"postzone/logger"
)

// ExtractClosedWays reads an OSM .pbf extract and returns the closed ways
// whose tags match key=value as polygon features, suitable as a mask
// source. An empty value matches any way carrying the key.
func ExtractClosedWays(path, key, value string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pbf: %w", err)
	}
	defer f.Close()

	d := osmpbf.NewDecoder(f)

	// use more memory from the start, it is faster
	d.SetBufferSize(osmpbf.MaxBlobSize)

	if err := d.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return nil, fmt.Errorf("decode pbf: %w", err)
	}

	nodes := make(map[int64]orb.Point)
	type taggedWay struct {
		nodeIDs []int64
		tags    map[string]string
	}
	var ways []taggedWay

	for {
		v, err := d.Decode()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode pbf: %w", err)
		}
		switch v := v.(type) {
		case *osmpbf.Node:
			nodes[v.ID] = orb.Point{v.Lon, v.Lat}
		case *osmpbf.Way:
			tag, ok := v.Tags[key]
			if !ok || (value != "" && tag != value) {
				continue
			}
			ids := make([]int64, len(v.NodeIDs))
			copy(ids, v.NodeIDs)
			ways = append(ways, taggedWay{nodeIDs: ids, tags: v.Tags})
		case *osmpbf.Relation:
			// multipolygon relations are out of scope for mask extraction
		default:
			return nil, fmt.Errorf("unknown pbf element %T", v)
		}
	}

	fc := geojson.NewFeatureCollection()
	dropped := 0
	for _, w := range ways {
		ring := closedRing(w.nodeIDs, nodes)
		if ring == nil {
			dropped++
			continue
		}
		feat := geojson.NewFeature(orb.Polygon{ring})
		for k, v := range w.tags {
			feat.Properties[k] = v
		}
		fc.Append(feat)
	}
	logger.L().Info("pbf ways extracted", "path", path, "kept", len(fc.Features), "dropped", dropped)
	return fc, nil
}

// closedRing resolves a way's node refs into a ring, nil when the way is
// open, too short, or references nodes missing from the extract.
func closedRing(ids []int64, nodes map[int64]orb.Point) orb.Ring {
	if len(ids) < 4 || ids[0] != ids[len(ids)-1] {
		return nil
	}
	ring := make(orb.Ring, 0, len(ids))
	for _, id := range ids {
		pt, ok := nodes[id]
		if !ok {
			return nil
		}
		ring = append(ring, pt)
	}
	return ring
}

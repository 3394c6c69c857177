package geom

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlMulti struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Polygons []kmlPolygon `xml:"Polygon"`
}

type kmlPlacemark struct {
	Point      *kmlCoords  `xml:"Point"`
	LineString *kmlCoords  `xml:"LineString"`
	Polygon    *kmlPolygon `xml:"Polygon"`
	Multi      *kmlMulti   `xml:"MultiGeometry"`
}

type kmlDoc struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Document   *kmlDoc        `xml:"Document"`
	Folders    []kmlDoc       `xml:"Folder"`
}

// LoadKML extracts Point, LineString and Polygon placemarks from a KML file.
// KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Data{}, err
	}
	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Data{}, err
	}
	d := Data{CRS: WGS84}
	addPolygon := func(p kmlPolygon) {
		poly := orb.Polygon{orb.Ring(parseKMLCoords(p.Outer.Coordinates))}
		for _, in := range p.Inner {
			poly = append(poly, orb.Ring(parseKMLCoords(in.Coordinates)))
		}
		d.Add(poly)
	}
	walkPlacemark := func(pm kmlPlacemark) {
		if pm.Point != nil {
			d.Add(orb.MultiPoint(parseKMLCoords(pm.Point.Coordinates)))
		}
		if pm.LineString != nil {
			d.Add(orb.LineString(parseKMLCoords(pm.LineString.Coordinates)))
		}
		if pm.Polygon != nil {
			addPolygon(*pm.Polygon)
		}
		if pm.Multi != nil {
			for _, p := range pm.Multi.Points {
				d.Add(orb.MultiPoint(parseKMLCoords(p.Coordinates)))
			}
			for _, l := range pm.Multi.Lines {
				d.Add(orb.LineString(parseKMLCoords(l.Coordinates)))
			}
			for _, p := range pm.Multi.Polygons {
				addPolygon(p)
			}
		}
	}
	var walkDoc func(doc kmlDoc)
	walkDoc = func(doc kmlDoc) {
		for _, pm := range doc.Placemarks {
			walkPlacemark(pm)
		}
		if doc.Document != nil {
			walkDoc(*doc.Document)
		}
		for _, folder := range doc.Folders {
			walkDoc(folder)
		}
	}
	walkDoc(doc)
	return d, nil
}

// parseKMLCoords reads whitespace separated "lon,lat[,alt]" tuples
func parseKMLCoords(s string) []orb.Point {
	var pts []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}

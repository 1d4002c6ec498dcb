package hocr

import (
	"strconv"
	"strings"

	"github.com/gardar/docsift/pkg/geometry"
)

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// pixelBox is a bbox in page pixels
type pixelBox struct {
	x1, y1, x2, y2 float64
}

// parseBBox extracts the bbox property of a title attribute
func parseBBox(title string) (pixelBox, bool) {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return pixelBox{}, false
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return pixelBox{}, false
		}
		v[i] = f
	}
	return pixelBox{v[0], v[1], v[2], v[3]}, true
}

// normalize maps b into the 0-1 coordinate space of page
func (b pixelBox) normalize(page pixelBox) *geometry.Box {
	w := page.x2 - page.x1
	h := page.y2 - page.y1
	if w <= 0 || h <= 0 {
		return nil
	}
	box := geometry.NewBoxFromCorners(
		(b.x1-page.x1)/w,
		(b.y1-page.y1)/h,
		(b.x2-page.x1)/w,
		(b.y2-page.y1)/h,
	)
	return &box
}

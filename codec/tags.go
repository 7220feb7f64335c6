package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

const bpmFrame = "TBPM"

// Tags is the subset of ID3 metadata the remix tool reports.
type Tags struct {
	Title  string
	Artist string
	Album  string
	BPM    float64 // 0 when absent
}

// ReadTags returns the ID3v2 tags of an MP3 file. A file without a tag
// yields zero Tags.
func ReadTags(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, ioError("read tags", path, err)
	}
	defer tag.Close()

	return Tags{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
		BPM:    readBPM(tag),
	}, nil
}

// CopyTags replaces the ID3v2 tag of dstPath with the frames of srcPath.
// A TBPM frame is multiplied by tempoRatio so the tag keeps describing the
// rendered audio. Nothing is written when the source has no tag.
func CopyTags(srcPath, dstPath string, tempoRatio float64) error {
	src, err := id3v2.Open(srcPath, id3v2.Options{Parse: true})
	if err != nil {
		return ioError("read tags", srcPath, err)
	}
	defer src.Close()

	if !src.HasFrames() {
		return nil
	}

	dst, err := id3v2.Open(dstPath, id3v2.Options{Parse: true})
	if err != nil {
		return ioError("open tags", dstPath, err)
	}
	defer dst.Close()

	dst.DeleteAllFrames()
	dst.SetVersion(src.Version())

	for id, frames := range src.AllFrames() {
		if id == bpmFrame {
			continue
		}
		for _, f := range frames {
			dst.AddFrame(id, f)
		}
	}

	if bpm := readBPM(src); bpm > 0 {
		scaled := bpm
		if tempoRatio > 0 && !math.IsInf(tempoRatio, 0) {
			scaled = bpm * tempoRatio
		}
		dst.AddTextFrame(bpmFrame, id3v2.EncodingUTF8, formatBPM(scaled))
	}

	if err := dst.Save(); err != nil {
		return ioError("write tags", dstPath, err)
	}

	return nil
}

func readBPM(tag *id3v2.Tag) float64 {
	f := tag.GetLastFrame(bpmFrame)
	if f == nil {
		return 0
	}

	tf, ok := f.(id3v2.TextFrame)
	if !ok {
		return 0
	}

	bpm, err := strconv.ParseFloat(strings.TrimSpace(tf.Text), 64)
	if err != nil || bpm < 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0
	}

	return bpm
}

// formatBPM renders an integer BPM, the form most players expect.
func formatBPM(bpm float64) string {
	return fmt.Sprintf("%d", int(math.Round(bpm)))
}

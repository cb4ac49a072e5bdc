// Package mp4probe inspects encoded MP4 files to verify what an encoder
// produced: video codec, dimensions, sample count and duration.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/framepipe/pkg/ports"
)

// ErrNoVideoTrack is returned for files without a video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// Info describes the video track of an MP4 file.
type Info struct {
	Codec      Codec
	Width      int
	Height     int
	Samples    int
	Duration   time.Duration
	Fragmented bool
	HasAudio   bool
}

// Prober reads MP4 files through a ports.FileSystem.
type Prober struct {
	fs ports.FileSystem
}

// New creates a Prober.
func New(fs ports.FileSystem) *Prober {
	return &Prober{fs: fs}
}

// Probe reads and inspects the file at path.
func (p *Prober) Probe(path string) (Info, error) {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("mp4probe: read %s: %w", path, err)
	}
	return ProbeReader(bytes.NewReader(data))
}

// ProbeReader inspects an MP4 stream.
func ProbeReader(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Info{}, fmt.Errorf("mp4probe: decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return Info{}, fmt.Errorf("mp4probe: no moov box found")
	}

	info := Info{Fragmented: mp4File.IsFragmented()}

	var video *mp4.TrakBox
	for _, trak := range moov.Traks {
		switch handlerType(trak) {
		case "vide":
			if video == nil {
				video = trak
			}
		case "soun":
			info.HasAudio = true
		}
	}
	if video == nil {
		return Info{}, ErrNoVideoTrack
	}

	info.Codec, info.Width, info.Height = describeTrack(video)

	var timescale uint32 = 1000
	if video.Mdia.Mdhd != nil && video.Mdia.Mdhd.Timescale != 0 {
		timescale = video.Mdia.Mdhd.Timescale
	}

	var samples int
	var units uint64
	if info.Fragmented {
		samples, units, err = countFragmented(mp4File, moov, video.Tkhd.TrackID)
		if err != nil {
			return Info{}, err
		}
	}
	if samples == 0 {
		samples, units = countProgressive(video)
	}
	info.Samples = samples
	info.Duration = time.Duration(units) * time.Second / time.Duration(timescale)

	return info, nil
}

func handlerType(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return ""
	}
	return trak.Mdia.Hdlr.HandlerType
}

// describeTrack returns the codec and dimensions of a video track, preferring
// the sample entry over the track header.
func describeTrack(trak *mp4.TrakBox) (Codec, int, int) {
	codec := CodecUnknown
	width, height := 0, 0
	if trak.Tkhd != nil {
		width = int(uint32(trak.Tkhd.Width) >> 16)
		height = int(uint32(trak.Tkhd.Height) >> 16)
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return codec, width, height
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			codec = CodecH264
		case "hvc1", "hev1":
			codec = CodecHEVC
		case "av01":
			codec = CodecAV1
		default:
			continue
		}
		if entry, ok := child.(*mp4.VisualSampleEntryBox); ok && entry.Width > 0 {
			width, height = int(entry.Width), int(entry.Height)
		}
		return codec, width, height
	}
	return codec, width, height
}

// countProgressive returns the sample count and total duration in media
// timescale units from the sample table.
func countProgressive(trak *mp4.TrakBox) (int, uint64) {
	var duration uint64
	if trak.Mdia.Mdhd != nil {
		duration = trak.Mdia.Mdhd.Duration
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsz == nil {
		return 0, duration
	}
	return int(trak.Mdia.Minf.Stbl.Stsz.SampleNumber), duration
}

// countFragmented walks every fragment of the track and sums sample
// durations.
func countFragmented(mp4File *mp4.File, moov *mp4.MoovBox, trackID uint32) (int, uint64, error) {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var count int
	var units uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || !hasTraf(frag.Moof, trackID) {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, 0, fmt.Errorf("mp4probe: get samples: %w", err)
			}
			for _, s := range samples {
				count++
				units += uint64(s.Dur)
			}
		}
	}
	return count, units, nil
}

func hasTraf(moof *mp4.MoofBox, trackID uint32) bool {
	for _, traf := range moof.Trafs {
		if traf.Tfhd != nil && traf.Tfhd.TrackID == trackID {
			return true
		}
	}
	return false
}

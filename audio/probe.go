package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pion/webrtc/v3/pkg/media/oggreader"
)

// opusGranuleRate is the fixed clock of Opus granule positions.
const opusGranuleRate = 48000

// ProbeResult describes an Ogg/Opus container.
type ProbeResult struct {
	Channels  int
	InputRate int
	PreSkip   int
	Pages     int
	Duration  time.Duration
}

// IsOgg reports whether data starts with an Ogg page signature.
func IsOgg(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "OggS"
}

// Probe reads the Opus headers and the last granule position of an Ogg
// stream.
func Probe(data []byte) (ProbeResult, error) {
	if !IsOgg(data) {
		return ProbeResult{}, errors.New("audio: not an ogg stream")
	}
	reader, header, err := oggreader.NewWith(bytes.NewReader(data))
	if err != nil {
		return ProbeResult{}, fmt.Errorf("could not read ogg header: %w", err)
	}

	res := ProbeResult{
		Channels:  int(header.Channels),
		InputRate: int(header.SampleRate),
		PreSkip:   int(header.PreSkip),
		Pages:     1,
	}
	var last uint64
	for {
		_, page, err := reader.ParseNextPage()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("could not read ogg page %d: %w", res.Pages, err)
		}
		res.Pages++
		if page.GranulePosition > last {
			last = page.GranulePosition
		}
	}

	if last > uint64(res.PreSkip) {
		samples := last - uint64(res.PreSkip)
		res.Duration = time.Duration(samples) * time.Second / opusGranuleRate
	}
	return res, nil
}

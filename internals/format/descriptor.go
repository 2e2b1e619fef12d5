package format

// Descriptor is one entry of the "formats" array reported by the extraction
// backend for a single media item.
type Descriptor struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Height         *int     `json:"height"`
	FPS            *float64 `json:"fps"`
	TBR            *float64 `json:"tbr"`
	ABR            *float64 `json:"abr"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
}

func (d Descriptor) hasVideo() bool {
	return d.VCodec != "" && d.VCodec != "none"
}

func (d Descriptor) hasAudio() bool {
	return d.ACodec != "" && d.ACodec != "none"
}

func (d Descriptor) height() int {
	if d.Height == nil {
		return 0
	}
	return *d.Height
}

func (d Descriptor) fps() int {
	if d.FPS == nil {
		return 0
	}
	return int(*d.FPS)
}

func (d Descriptor) tbr() int {
	if d.TBR == nil {
		return 0
	}
	return int(*d.TBR)
}

func (d Descriptor) abr() float64 {
	if d.ABR == nil {
		return 0
	}
	return *d.ABR
}

// Size returns the exact file size when known, the extractor's estimate
// otherwise, and 0 when neither is present.
func (d Descriptor) Size() int64 {
	if d.Filesize != nil {
		return *d.Filesize
	}
	if d.FilesizeApprox != nil {
		return *d.FilesizeApprox
	}
	return 0
}

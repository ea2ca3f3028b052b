package netmd

import (
	"time"

	"github.com/bdube/netmd/query"
)

const uploadChunkSize = 0x10000

// uploadSettleDelay is the pause after the terminal upload reply before
// the device is ready for another command (prior-art behavior, kept
// unchanged).
const uploadSettleDelay = 500 * time.Millisecond

// UploadResult is one track pulled off the device in raw wire form
// (MZ-RH1 and compatible recorders only; spec.md §4.4 "Upload").
type UploadResult struct {
	Format DiscFormat
	PCM    []byte
}

// SaveTrackToArray performs the factory-mode digital upload of a track,
// returning its on-disc format and raw sample bytes.
func (i *Interface) SaveTrackToArray(track int) (UploadResult, error) {
	payload, err := query.FormatQuery("00 18 06 ff ff 00 %w 00 00 00", uint64(track))
	if err != nil {
		return UploadResult{}, wrapQueryErr(err)
	}
	reply, err := i.roundTrip(payload, false, true, 0)
	if err != nil {
		return UploadResult{}, err
	}
	vals, err := scanReply(reply, "18 06 ff ff 00 %w %b %d")
	if err != nil {
		return UploadResult{}, err
	}
	codec := byte(vals[1].(uint64))
	total := int(vals[2].(uint64))
	format, err := decodeUploadCodec(codec)
	if err != nil {
		return UploadResult{}, err
	}

	data, err := i.tr.ReadBulk(total, uploadChunkSize, nil)
	if err != nil {
		return UploadResult{}, wrapErr(KindCommunication, err)
	}

	if _, err := i.roundTrip(payload, false, true, 0); err != nil {
		return UploadResult{}, err
	}
	sleep(uploadSettleDelay)

	return UploadResult{Format: format, PCM: data}, nil
}

package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// MaxFrameSize bounds a single wire frame. Frames are small (the largest is a
// full board broadcast); anything beyond this is a corrupt or hostile stream.
const MaxFrameSize = 1 << 20

// Codec errors. All of them are fatal to the connection they occur on.
var (
	ErrUnknownTag    = errors.New("unknown message tag")
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
	ErrEmptyFrame    = errors.New("empty frame")
)

// Frame layout: a 4-byte big-endian payload length, then the payload. The
// payload is one tag byte followed by the JSON body of that variant. The
// length prefix makes each message self-framing so partial reads recover at
// the next frame boundary.

// Decoder reads a stream of framed messages. It is a lazy, non-restartable
// sequence: call Decode until it returns an error. io.EOF marks a clean
// stream end; every other error is fatal to the stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a Decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads and deserializes the next message from the stream
func (d *Decoder) Decode() (Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated frame header: %w", err)
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length == 0 {
		return nil, ErrEmptyFrame
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, fmt.Errorf("truncated frame body: %w", err)
	}

	tag := Tag(payload[0])
	msg := newMessage(tag)
	if msg == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}

	if err := json.Unmarshal(payload[1:], msg); err != nil {
		return nil, fmt.Errorf("decoding tag %d body: %w", tag, err)
	}

	return msg, nil
}

// Encoder writes framed messages to a stream. It performs no locking; the
// caller serializes writes to a shared connection.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode serializes and frames a single message. The frame is written with
// one Write call so a serialized writer never interleaves frames.
func (e *Encoder) Encode(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding tag %d: %w", msg.WireTag(), err)
	}

	length := 1 + len(body)
	if length > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	frame := make([]byte, 4+length)
	binary.BigEndian.PutUint32(frame[:4], uint32(length))
	frame[4] = byte(msg.WireTag())
	copy(frame[5:], body)

	if _, err := e.w.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

package cpu

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// LoadImage reads a raw big-endian word image into memory, starting at
// address 0. Memory beyond the image is left unchanged.
func LoadImage(r io.Reader, st *State) (count int, err error) {
	in := bufio.NewReader(r)

	var scratch [2]byte
	for {
		_, err = io.ReadFull(in, scratch[:])
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrImageOdd
			return
		}
		if err != nil {
			return
		}
		if count == MEMORY_SIZE {
			err = ErrImageSize
			return
		}
		st.Memory[count] = binary.BigEndian.Uint16(scratch[:])
		count++
	}
}

// WriteImage writes words as a raw big-endian image.
func WriteImage(w io.Writer, words []uint16) (err error) {
	if len(words) > MEMORY_SIZE {
		err = ErrImageSize
		return
	}

	out := bufio.NewWriter(w)
	err = binary.Write(out, binary.BigEndian, words)
	if err != nil {
		return
	}

	err = out.Flush()
	return
}

// Package ubx - минимальный разбор протокола u-blox UBX для получения времени приёмника.
package ubx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Sync bytes для UBX протокола
const (
	Sync1 = 0xB5
	Sync2 = 0x62
)

// headerSize - sync(2) + class + id + length(2); за payload следует checksum(2)
const headerSize = 6

// maxPayload ограничивает длину, чтобы мусор на линии не выделял мегабайты
const maxPayload = 4096

// ErrChecksum - контрольная сумма пакета не совпала
var ErrChecksum = errors.New("ubx checksum mismatch")

// Packet - один UBX пакет без sync и checksum.
type Packet struct {
	Class   uint8
	ID      uint8
	Payload []byte
}

// Checksum вычисляет UBX контрольную сумму (Fletcher-8 по class..payload)
func Checksum(data []byte) (ckA, ckB uint8) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}

// Encode собирает полный UBX пакет: header + payload + checksum
func (p Packet) Encode() []byte {
	buf := make([]byte, 0, headerSize+len(p.Payload)+2)
	buf = append(buf, Sync1, Sync2, p.Class, p.ID)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Payload)))
	buf = append(buf, p.Payload...)
	ckA, ckB := Checksum(buf[2:])
	return append(buf, ckA, ckB)
}

// Reader читает UBX пакеты из потока, пропуская NMEA и прочий мусор до sync.
type Reader struct {
	r *bufio.Reader
}

// NewReader оборачивает поток
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next читает следующий пакет. При ErrChecksum поток остаётся пригодным для следующего вызова.
func (rd *Reader) Next() (Packet, error) {
	if err := rd.syncUp(); err != nil {
		return Packet{}, err
	}
	var hdr [headerSize - 2]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		return Packet{}, err
	}
	length := int(binary.LittleEndian.Uint16(hdr[2:4]))
	if length > maxPayload {
		return Packet{}, fmt.Errorf("ubx payload too long: %d", length)
	}
	body := make([]byte, length+2)
	if _, err := io.ReadFull(rd.r, body); err != nil {
		return Packet{}, err
	}
	ckA, ckB := Checksum(append(hdr[:], body[:length]...))
	if body[length] != ckA || body[length+1] != ckB {
		return Packet{}, ErrChecksum
	}
	return Packet{Class: hdr[0], ID: hdr[1], Payload: body[:length]}, nil
}

func (rd *Reader) syncUp() error {
	var prev byte
	for {
		b, err := rd.r.ReadByte()
		if err != nil {
			return err
		}
		if prev == Sync1 && b == Sync2 {
			return nil
		}
		prev = b
	}
}

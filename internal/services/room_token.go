package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoomTokenIssuer hands out the opaque handle the media layer maps to a call.
type RoomTokenIssuer interface {
	Issue() (string, error)
}

type RandomRoomIssuer struct {
	now func() time.Time
}

func NewRandomRoomIssuer() *RandomRoomIssuer {
	return &RandomRoomIssuer{now: time.Now}
}

// Issue combines the millisecond clock with 122 random bits.
func (i *RandomRoomIssuer) Issue() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate room id: %w", err)
	}
	stamp := strconv.FormatInt(i.now().UnixMilli(), 36)
	return "room_" + stamp + "_" + strings.ReplaceAll(id.String(), "-", ""), nil
}

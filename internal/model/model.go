package model

type RoomID string

const EmptyRoomID RoomID = ""

type RoomStatus string

const (
	StatusLobby    RoomStatus = "LOBBY"
	StatusActive   RoomStatus = "ACTIVE"
	StatusFinished RoomStatus = "FINISHED"
)

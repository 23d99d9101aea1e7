package viewmodel

import "github.com/gofiber/fiber/v2"

type Layout struct {
	Page          string
	FromProtected bool
	IsError       bool
	Msg           fiber.Map
	Username      string
	Avatar        string
	IsAdmin       bool
	CSRF          string
	IsDev         bool
	OGViewModel   *OpenGraph
}

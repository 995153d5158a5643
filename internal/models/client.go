package models

import "time"

type Client struct {
	ID              int64     `json:"id"`
	EstablishmentID int64     `json:"establishmentId"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Document        string    `json:"document"`
	Address         string    `json:"address"`
	Vehicle         string    `json:"vehicle"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

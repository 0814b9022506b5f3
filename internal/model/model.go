// Package model contains the domain types shared by every layer. Money amounts are
// shopspring decimals; simulated prices are float64 because they never touch a balance
// until converted.
package model

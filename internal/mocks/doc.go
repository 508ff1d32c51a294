// Package mocks contains testify mocks of the model interfaces.
package mocks

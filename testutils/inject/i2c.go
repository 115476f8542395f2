// Package inject provides function-injected implementations of the bus interfaces.
package inject

import (
	"go.viam.com/lsm303/components/board/genericlinux/buses"
)

// I2CController is an injected I2C controller.
type I2CController struct {
	buses.Controller
	OpenFunc        func(addr buses.Address) bool
	WriteFunc       func(p []byte)
	ContinueFunc    func(p []byte)
	RestartReadFunc func(p []byte)
	StatusFunc      func() buses.Status
	CloseFunc       func() buses.Status
	AbortFunc       func()
}

// Open calls the injected Open or the real version.
func (c *I2CController) Open(addr buses.Address) bool {
	if c.OpenFunc == nil {
		return c.Controller.Open(addr)
	}
	return c.OpenFunc(addr)
}

// Write calls the injected Write or the real version.
func (c *I2CController) Write(p []byte) {
	if c.WriteFunc == nil {
		c.Controller.Write(p)
		return
	}
	c.WriteFunc(p)
}

// Continue calls the injected Continue or the real version.
func (c *I2CController) Continue(p []byte) {
	if c.ContinueFunc == nil {
		c.Controller.Continue(p)
		return
	}
	c.ContinueFunc(p)
}

// RestartRead calls the injected RestartRead or the real version.
func (c *I2CController) RestartRead(p []byte) {
	if c.RestartReadFunc == nil {
		c.Controller.RestartRead(p)
		return
	}
	c.RestartReadFunc(p)
}

// Status calls the injected Status or the real version.
func (c *I2CController) Status() buses.Status {
	if c.StatusFunc == nil {
		return c.Controller.Status()
	}
	return c.StatusFunc()
}

// Close calls the injected Close or the real version.
func (c *I2CController) Close() buses.Status {
	if c.CloseFunc == nil {
		return c.Controller.Close()
	}
	return c.CloseFunc()
}

// Abort calls the injected Abort or the real version.
func (c *I2CController) Abort() {
	if c.AbortFunc == nil {
		c.Controller.Abort()
		return
	}
	c.AbortFunc()
}

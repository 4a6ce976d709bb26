/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"annotcanvas/internal/shape"
)

func (c *Controller) lookup(id string) (shape.Shape, error) {
	s, ok := c.ShapeByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	return s, nil
}

func (c *Controller) bringToFront(s shape.Shape) {
	c.maxZ++
	s.SetZIndex(c.maxZ)
	c.sync(s)
}

// BringToFront gives the shape a z-index above every other shape.
func (c *Controller) BringToFront(id string) error {
	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	c.bringToFront(s)
	c.repaint()
	return nil
}

// SendToBack shifts every other shape up by one and puts the shape at zero.
func (c *Controller) SendToBack(id string) error {
	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	for _, o := range c.shapes {
		if o != s {
			o.SetZIndex(o.ZIndex() + 1)
			c.sync(o)
		}
	}
	s.SetZIndex(0)
	c.sync(s)
	c.maxZ++
	c.repaint()
	return nil
}

// SetZIndex assigns n directly; the counter never moves backwards.
func (c *Controller) SetZIndex(id string, n int) error {
	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	s.SetZIndex(n)
	c.sync(s)
	c.maxZ = max(c.maxZ, n)
	c.repaint()
	return nil
}

// DeleteArea removes the shape and its record.
func (c *Controller) DeleteArea(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	if c.selected == c.shapes[i] {
		c.selected = nil
	}
	c.shapes = append(c.shapes[:i], c.shapes[i+1:]...)
	c.records = append(c.records[:i], c.records[i+1:]...)
	c.repaint()
	return nil
}

// Clear removes every shape and resets the z-index counter.
func (c *Controller) Clear() {
	c.shapes, c.records, c.selected, c.maxZ = nil, nil, nil, 0
	c.repaint()
}

// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package column

import "fmt"

func toStringFallback(v Value) string {
	return fmt.Sprintf("%v", v)
}

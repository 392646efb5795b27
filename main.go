// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/oreui-customizer/oreui/cmd/oreui"

func main() {
	cmd.Execute()
}

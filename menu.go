package main

import (
	"fmt"
	"strings"

	"qtermtape/ops"
)

// menuItem is a fusible gate in the exclusion picker.
type menuItem struct {
	name     string
	gateName string
	symbol   string
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// exclusionMenu lists every gate the fusion pass can merge.
var exclusionMenu = []menuCategory{
	{
		name: "Fixed",
		items: []menuItem{
			{name: "Identity", gateName: ops.NameIdentity, symbol: "I"},
			{name: "Pauli-X (NOT)", gateName: ops.NamePauliX, symbol: "X"},
			{name: "Pauli-Y", gateName: ops.NamePauliY, symbol: "Y"},
			{name: "Pauli-Z", gateName: ops.NamePauliZ, symbol: "Z"},
			{name: "Phase (S)", gateName: ops.NameS, symbol: "S"},
			{name: "T Gate", gateName: ops.NameT, symbol: "T"},
			{name: "√X (SX)", gateName: ops.NameSX, symbol: "√X"},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gateName: ops.NameRX, symbol: "RX"},
			{name: "Rotate Y", gateName: ops.NameRY, symbol: "RY"},
			{name: "Rotate Z", gateName: ops.NameRZ, symbol: "RZ"},
			{name: "Phase Shift", gateName: ops.NamePhaseShift, symbol: "Rϕ"},
			{name: "General Rot", gateName: ops.NameRot, symbol: "Rot"},
		},
	},
}

// renderMenu renders the floating exclusion picker.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Exclude From Fusion"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range exclusionMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(exclusionMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 36)))
	sb.WriteString("\n")

	cat := exclusionMenu[m.menuCat]
	for i, item := range cat.items {
		mark := "[ ]"
		if m.isExcluded(item.gateName) {
			mark = "[x]"
		}
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ " + mark + " "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   " + mark + " ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-16s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Toggle  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

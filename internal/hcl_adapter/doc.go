// Package hcl_adapter loads scenes written in HCL.
//
// A scene file declares nodes, edges, view bindings and animations:
//
//	node "value" "1" {
//	  value = 0
//	}
//
//	node "interpolation" "2" {
//	  input_range  = [0, 1]
//	  output_range = [0, 100]
//	}
//
//	node "props" "3" {
//	  props = { left = 2 }
//	}
//
//	edge {
//	  parent = 1
//	  child  = 2
//	}
//
//	view {
//	  node     = 3
//	  view_tag = 10
//	}
//
//	animation "spring" {
//	  node     = 1
//	  to_value = 1
//	  tension  = 40
//	  friction = 7
//	}
package hcl_adapter

// Package yaml_adapter loads scenes written in YAML. A file may hold several
// documents separated by "---"; each is merged into the scene.
//
//	nodes:
//	  - {tag: 1, type: value}
//	  - {tag: 2, type: interpolation, inputRange: [0, 1], outputRange: [0, 100]}
//	  - {tag: 3, type: props, props: {left: 2}}
//	edges:
//	  - {parent: 1, child: 2}
//	  - {parent: 2, child: 3}
//	views:
//	  - {node: 3, viewTag: 10}
//	animations:
//	  - {node: 1, type: spring, toValue: 1, tension: 40, friction: 7}
package yaml_adapter

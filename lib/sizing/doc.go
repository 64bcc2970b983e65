/*
Copyright 2021 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package sizing computes the instance types, node counts and disk size
of a platform installation from the set of enabled product modules.

The decision rules are kept in read-only tables. Each named policy
wraps one table:

	aggregate  sums per-module CPU/RAM costs on top of a tier base,
	           applies a 20% buffer and picks the instance class by the
	           buffered CPU demand.
	legacy     picks fixed totals depending on whether any data intensive
	           module is enabled. Resizes of existing installations use
	           a separate set of rules.

Instance type availability is resolved with an inventory.Lookup.
*/
package sizing

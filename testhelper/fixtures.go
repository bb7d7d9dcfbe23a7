package testhelper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shibukawa/modelexpr/model"
)

// personSchema describes Person with two sibling subtypes that both declare
// Team and Office, so paths through them branch.
const personSchema = `
	enums:
		- name: Level
		  members:
			- name: Junior
			  displayName: Junior Staff
			- name: Senior
			- name: Principal
			  value: 10
	types:
		- name: Person
		  properties:
			- {name: Name, type: string}
			- {name: Age, type: int, nullable: true}
			- {name: Level, type: Level}
			- {name: Manager, type: Person}
			- {name: Reports, type: Person, list: true}
			- {name: Tags, type: string, list: true}
			- {name: Salary, type: decimal}
			- {name: Badge, type: guid}
			- {name: Joined, type: datetime}
		- name: Employee
		  base: Person
		  properties:
			- {name: Team, type: Team}
			- {name: Office, type: string}
		- name: Contractor
		  base: Person
		  properties:
			- {name: Team, type: Team}
			- {name: Office, type: Site}
			- {name: Agency, type: string}
		- name: Team
		  properties:
			- {name: Name, type: string}
			- {name: Lead, type: Person}
			- {name: Members, type: Person, list: true}
		- name: Site
		  properties:
			- {name: Name, type: string}
			- {name: City, type: string}
`

const personData = `
	objects:
		- key: alice
		  type: Employee
		  values:
				Name: Alice
				Age: 52
				Level: Principal
				Reports: [bob, carol]
				Team: core
				Office: HQ
				Salary: "1200.50"
				Badge: 0b7f5a9e-5a7e-4c47-9d59-7c9e1a0c0001
				Joined: 2015-04-01T09:00:00Z
		- key: bob
		  type: Employee
		  values:
				Name: Bob
				Age: 30
				Level: Senior
				Manager: alice
				Team: core
				Tags: [go, sql]
				Salary: "800"
		- key: carol
		  type: Contractor
		  values:
				Name: Carol
				Manager: alice
				Team: core
				Office: lab
				Agency: Acme
				Salary: "950.25"
		- key: dave
		  type: Person
		  values:
				Name: Dave
		- key: core
		  type: Team
		  values:
				Name: Core
				Lead: alice
				Members: [alice, bob, carol]
		- key: lab
		  type: Site
		  values:
				Name: Lab
				City: Osaka
`

// PersonRegistry returns a sealed registry with Person, Employee, Contractor,
// Team, Site and the Level enumeration.
func PersonRegistry(t *testing.T) *model.Registry {
	t.Helper()

	r, err := model.LoadSchema([]byte(TrimIndent(t, personSchema)))
	if err != nil {
		t.Fatalf("failed to load person schema: %v", err)
	}

	return r
}

// PersonGraph returns the sample object graph keyed by object key:
// alice manages bob and carol, dave has no manager, core is their team.
func PersonGraph(t *testing.T, r *model.Registry) map[string]*model.Object {
	t.Helper()

	objects, err := model.LoadInstances(r, []byte(TrimIndent(t, personData)))
	if err != nil {
		t.Fatalf("failed to load person data: %v", err)
	}

	return objects
}

// PersonFiles writes the person schema and data documents into dir and
// returns their paths.
func PersonFiles(t *testing.T, dir string) (schema, data string) {
	t.Helper()

	schema = filepath.Join(dir, "schema.yaml")
	data = filepath.Join(dir, "data.yaml")

	if err := os.WriteFile(schema, []byte(TrimIndent(t, personSchema)), 0o644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}

	if err := os.WriteFile(data, []byte(TrimIndent(t, personData)), 0o644); err != nil {
		t.Fatalf("failed to write data: %v", err)
	}

	return schema, data
}

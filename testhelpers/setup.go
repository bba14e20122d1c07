package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// A small Maven-style workspace: one mapper pair and one service calling it.
// Zero-based positions the tests rely on:
//
//	UserMapperXML   <select id="findById"> tag at 3:2, id value at 3:14
//	                <insert id="insert"> tag at 6:2
//	UserMapperJava  findById at 5:9, insert at 6:8, deleteAll at 7:8
//	UserServiceJava userMapper.findById at 8:15, userMapper.deleteAll at 12:8
const (
	UserNamespace = "com.acme.mapper.UserMapper"

	UserMapperXMLPath  = "src/main/resources/mapper/UserMapper.xml"
	UserMapperJavaPath = "src/main/java/com/acme/mapper/UserMapper.java"
	UserServicePath    = "src/main/java/com/acme/service/UserService.java"
	OrderMapperXMLPath = "src/main/resources/mapper/OrderMapper.xml"
	PomPath            = "pom.xml"
)

const UserMapperXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE mapper PUBLIC "-//mybatis.org//DTD Mapper 3.0//EN" "http://mybatis.org/dtd/mybatis-3-mapper.dtd">
<mapper namespace="com.acme.mapper.UserMapper">
  <select id="findById" resultType="User">
    SELECT * FROM users WHERE id = #{id}
  </select>
  <insert id="insert">
    INSERT INTO users(name) VALUES (#{name})
  </insert>
</mapper>
`

const UserMapperJava = `package com.acme.mapper;

import com.acme.model.User;

public interface UserMapper {
    User findById(Long id);
    int insert(User user);
    int deleteAll();
}
`

const UserServiceJava = `package com.acme.service;

import com.acme.mapper.UserMapper;

public class UserService {
    private final UserMapper userMapper;

    public User load(Long id) {
        return userMapper.findById(id);
    }

    public void wipe() {
        userMapper.deleteAll();
    }
}
`

const OrderMapperXML = `<mapper namespace="com.acme.mapper.OrderMapper">
  <select id="findOrder">SELECT 1</select>
</mapper>
`

const Pom = "<project><modelVersion>4.0.0</modelVersion></project>\n"

// UserWorkspace returns the files of the standard fixture workspace
func UserWorkspace() map[string]string {
	return map[string]string{
		UserMapperXMLPath:  UserMapperXML,
		UserMapperJavaPath: UserMapperJava,
		UserServicePath:    UserServiceJava,
	}
}

// WriteWorkspace creates files (slash-separated paths relative to the root)
// in a fresh temp directory and returns its path
func WriteWorkspace(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes one file below root, creating parent directories
func WriteFile(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
